package database

import (
	"context"
	"embed"
	"fmt"
	"io"
	"time"

	"github.com/SergeyParamoshkin/blog/internal/model"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed fixtures/default.yaml
var defaultFixturesFS embed.FS

// Fixtures is the YAML shape accepted by Seed. Articles reference users and
// comments reference articles by their position in the file, starting at 1.
type Fixtures struct {
	Users []struct {
		Name     string `yaml:"name"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"users"`
	Articles []struct {
		Title     string  `yaml:"title"`
		Content   string  `yaml:"content"`
		Author    int     `yaml:"author"`
		ImagePath *string `yaml:"image_path"`
		Comments  []struct {
			User    int    `yaml:"user"`
			Content string `yaml:"content"`
		} `yaml:"comments"`
	} `yaml:"articles"`
}

// SeedResult counts the rows created by Seed.
type SeedResult struct {
	Users, Articles, Comments int
}

// DefaultFixtures opens the embedded fixture file.
func DefaultFixtures() (io.ReadCloser, error) {
	return defaultFixturesFS.Open("fixtures/default.yaml")
}

// Seed loads fixtures from r in one transaction.
func Seed(ctx context.Context, db *gorm.DB, r io.Reader) (SeedResult, error) {
	var (
		fx  Fixtures
		res SeedResult
	)

	if err := yaml.NewDecoder(r).Decode(&fx); err != nil {
		return res, fmt.Errorf("parsing fixtures: %w", err)
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := make([]*model.User, 0, len(fx.Users))
		for _, u := range fx.Users {
			user := &model.User{Name: u.Name, Email: u.Email, Password: u.Password}
			if err := tx.Create(user).Error; err != nil {
				return fmt.Errorf("seeding user %q: %w", u.Email, err)
			}
			users = append(users, user)
		}
		res.Users = len(users)

		now := time.Now()
		for i, a := range fx.Articles {
			if a.Author < 1 || a.Author > len(users) {
				return fmt.Errorf("article %d: author %d out of range", i+1, a.Author)
			}
			article := &model.Article{
				Title:       a.Title,
				Content:     a.Content,
				AuthorID:    users[a.Author-1].ID,
				ImagePath:   a.ImagePath,
				PublishedAt: &now,
			}
			if err := tx.Create(article).Error; err != nil {
				return fmt.Errorf("seeding article %q: %w", a.Title, err)
			}
			res.Articles++

			for j, c := range a.Comments {
				if c.User < 1 || c.User > len(users) {
					return fmt.Errorf("article %d comment %d: user %d out of range", i+1, j+1, c.User)
				}
				comment := &model.Comment{ArticleID: article.ID, UserID: users[c.User-1].ID, Content: c.Content}
				if err := tx.Create(comment).Error; err != nil {
					return fmt.Errorf("seeding comment: %w", err)
				}
				res.Comments++
			}
		}

		return nil
	})

	return res, err
}
