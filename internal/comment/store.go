package comment

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeyParamoshkin/blog/internal/apperr"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ForArticle lists an article's comments with their users, newest first.
func (s *Store) ForArticle(ctx context.Context, articleID uint) ([]model.Comment, error) {
	var comments []model.Comment
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("article_id = ?", articleID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("listing comments of article %d: %w", articleID, err)
	}

	return comments, nil
}

// Remaining lists what is left of an article's thread in id order.
func (s *Store) Remaining(ctx context.Context, articleID uint) ([]model.Comment, error) {
	var comments []model.Comment
	err := s.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Order("id").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("listing remaining comments of article %d: %w", articleID, err)
	}

	return comments, nil
}

// Find loads one comment with its user.
func (s *Store) Find(ctx context.Context, id uint) (*model.Comment, error) {
	var c model.Comment
	err := s.db.WithContext(ctx).Preload("User").First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("comment %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading comment %d: %w", id, err)
	}

	return &c, nil
}

func (s *Store) Create(ctx context.Context, c *model.Comment) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error; err != nil {
		return fmt.Errorf("creating comment: %w", err)
	}

	return nil
}

// UpdateContent rewrites the content column only.
func (s *Store) UpdateContent(ctx context.Context, c *model.Comment, content string) error {
	err := s.db.WithContext(ctx).Model(c).Omit(clause.Associations).Update("content", content).Error
	if err != nil {
		return fmt.Errorf("updating comment %d: %w", c.ID, err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, c *model.Comment) error {
	res := s.db.WithContext(ctx).Delete(&model.Comment{}, c.ID)
	if res.Error != nil {
		return fmt.Errorf("deleting comment %d: %w", c.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("comment %d: %w", c.ID, apperr.ErrNotFound)
	}

	return nil
}
