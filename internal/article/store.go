package article

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SergeyParamoshkin/blog/internal/apperr"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the gorm-backed article repository.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// List loads every article with its author and comments in one pass.
func (s *Store) List(ctx context.Context) ([]model.Article, error) {
	var articles []model.Article
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Comments").
		Order("id").
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}

	return articles, nil
}

// Detail loads one article with its author, comments and comment authors.
func (s *Store) Detail(ctx context.Context, id uint) (*model.Article, error) {
	var a model.Article
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("Comments.User").
		First(&a, id).Error
	if err != nil {
		return nil, wrapLoadErr(err, id)
	}

	return &a, nil
}

// Find loads one article with its author only.
func (s *Store) Find(ctx context.Context, id uint) (*model.Article, error) {
	var a model.Article
	if err := s.db.WithContext(ctx).Preload("Author").First(&a, id).Error; err != nil {
		return nil, wrapLoadErr(err, id)
	}

	return &a, nil
}

// Exists reports whether id resolves to an article.
func (s *Store) Exists(ctx context.Context, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Article{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("checking article %d: %w", id, err)
	}

	return n > 0, nil
}

// Search matches folded against the folded title and content columns.
// folded must already be passed through model.Fold.
func (s *Store) Search(ctx context.Context, folded string) ([]model.Article, error) {
	pattern := "%" + escapeLike(folded) + "%"

	var articles []model.Article
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Comments").
		Where(`title_folded LIKE ? ESCAPE '\' OR content_folded LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("id").
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("searching articles: %w", err)
	}

	return articles, nil
}

func (s *Store) Create(ctx context.Context, a *model.Article) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error; err != nil {
		return fmt.Errorf("creating article: %w", err)
	}

	return nil
}

// Save writes every column of a, leaving associations alone.
func (s *Store) Save(ctx context.Context, a *model.Article) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(a).Error; err != nil {
		return fmt.Errorf("saving article %d: %w", a.ID, err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.Article{}, id)
	if res.Error != nil {
		return fmt.Errorf("deleting article %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("article %d: %w", id, apperr.ErrNotFound)
	}

	return nil
}

func wrapLoadErr(err error, id uint) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("article %d: %w", id, apperr.ErrNotFound)
	default:
		return fmt.Errorf("loading article %d: %w", id, err)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
