package comment

import (
	"context"

	"github.com/SergeyParamoshkin/blog/internal/apperr"
	"github.com/SergeyParamoshkin/blog/internal/cache"
	"github.com/SergeyParamoshkin/blog/internal/model"
)

// Checker resolves a foreign key.
type Checker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// Service runs comment writes and evicts the listing and stats caches after
// each one, since comment counts show up in both.
type Service struct {
	store       *Store
	articles    Checker
	users       Checker
	invalidator *cache.Invalidator
}

func NewService(store *Store, articles, users Checker, c cache.Store) *Service {
	return &Service{
		store:       store,
		articles:    articles,
		users:       users,
		invalidator: cache.NewInvalidator(c),
	}
}

// DeleteResult is what remains of the thread after a delete.
type DeleteResult struct {
	RemainingCount int
	FirstRemaining *model.Comment
}

// Get returns one comment with its user.
func (s *Service) Get(ctx context.Context, id uint) (*model.Comment, error) {
	return s.store.Find(ctx, id)
}

func (s *Service) ForArticle(ctx context.Context, articleID uint) ([]model.Comment, error) {
	return s.store.ForArticle(ctx, articleID)
}

// Create checks both references, persists c and returns it with its user.
func (s *Service) Create(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	v := apperr.NewValidationError()

	ok, err := s.articles.Exists(ctx, c.ArticleID)
	if err != nil {
		return nil, err
	}
	if !ok {
		v.Add("article_id", "The selected article id is invalid.")
	}

	ok, err = s.users.Exists(ctx, c.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		v.Add("user_id", "The selected user id is invalid.")
	}

	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx)

	return s.store.Find(ctx, c.ID)
}

func (s *Service) Update(ctx context.Context, id uint, content string) (*model.Comment, error) {
	c, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateContent(ctx, c, content); err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx)

	return s.store.Find(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uint) (*DeleteResult, error) {
	c, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, c); err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx)

	remaining, err := s.store.Remaining(ctx, c.ArticleID)
	if err != nil {
		return nil, err
	}

	res := &DeleteResult{RemainingCount: len(remaining)}
	if len(remaining) > 0 {
		res.FirstRemaining = &remaining[0]
	}

	return res, nil
}
