// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/SergeyParamoshkin/blog/internal/database"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"gorm.io/gorm"
)

// New returns a migrated sqlite database in t's temp dir, closed on cleanup.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "blog.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	return db
}

// User inserts a user and returns it.
func User(t testing.TB, db *gorm.DB, name string) *model.User {
	t.Helper()

	u := &model.User{Name: name, Email: name + "@example.com", Password: "$2a$10$fixture"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}

	return u
}

// Article inserts an article by author and returns it.
func Article(t testing.TB, db *gorm.DB, author *model.User, title, content string) *model.Article {
	t.Helper()

	a := &model.Article{Title: title, Content: content, AuthorID: author.ID}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("create article %q: %v", title, err)
	}

	return a
}

// Comment inserts a comment and returns it.
func Comment(t testing.TB, db *gorm.DB, article *model.Article, user *model.User, content string) *model.Comment {
	t.Helper()

	c := &model.Comment{ArticleID: article.ID, UserID: user.ID, Content: content}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}

	return c
}
