package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeyParamoshkin/blog/internal/apperr"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", id, err)
	}

	return &u, nil
}

// Create rejects a duplicate email as a validation failure.
func (s *Store) Create(ctx context.Context, u *model.User) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", u.Email).Count(&n).Error; err != nil {
		return fmt.Errorf("checking email: %w", err)
	}
	if n > 0 {
		return apperr.Invalid("email", "The email has already been taken.")
	}

	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	return nil
}

func (s *Store) Exists(ctx context.Context, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("checking user %d: %w", id, err)
	}

	return n > 0, nil
}
