package article

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SergeyParamoshkin/blog/internal/apperr"
	"github.com/SergeyParamoshkin/blog/internal/articleresponse"
	"github.com/SergeyParamoshkin/blog/internal/cache"
	"github.com/SergeyParamoshkin/blog/internal/metrics"
	"github.com/SergeyParamoshkin/blog/internal/model"
)

// UserChecker resolves author references.
type UserChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// Service coordinates article reads with the listing cache and evicts the
// cache after every write.
type Service struct {
	store       *Store
	users       UserChecker
	cache       cache.Store
	invalidator *cache.Invalidator
	ttl         time.Duration
	metrics     *metrics.Instruments
	now         func() time.Time
}

func NewService(store *Store, users UserChecker, c cache.Store, ttl time.Duration, m *metrics.Instruments) *Service {
	return &Service{
		store:       store,
		users:       users,
		cache:       c,
		invalidator: cache.NewInvalidator(c),
		ttl:         ttl,
		metrics:     m,
		now:         time.Now,
	}
}

// Listing returns the article summaries, from the cache unless bypass is set.
func (s *Service) Listing(ctx context.Context, bypass bool) ([]articleresponse.ArticleSummary, error) {
	if bypass {
		return s.summaries(ctx)
	}

	list, hit, err := cache.Remember(ctx, s.cache, cache.ListingKey, s.ttl, s.summaries)
	if err != nil {
		return nil, err
	}
	s.metrics.CacheLookup(ctx, cache.ListingKey, hit)

	return list, nil
}

func (s *Service) summaries(ctx context.Context) ([]articleresponse.ArticleSummary, error) {
	articles, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	return articleresponse.NewSummaries(articles), nil
}

// Get returns the article with its author and comment thread.
func (s *Service) Get(ctx context.Context, id uint) (*model.Article, error) {
	return s.store.Detail(ctx, id)
}

// Search returns the articles whose title or content contains q, ignoring
// case and accents. A blank query matches nothing.
func (s *Service) Search(ctx context.Context, q string) ([]articleresponse.ArticleSummary, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []articleresponse.ArticleSummary{}, nil
	}

	articles, err := s.store.Search(ctx, model.Fold(q))
	if err != nil {
		return nil, err
	}

	return articleresponse.NewSummaries(articles), nil
}

// Create persists a after checking its author exists.
func (s *Service) Create(ctx context.Context, a *model.Article) (*model.Article, error) {
	ok, err := s.users.Exists(ctx, a.AuthorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Invalid("author_id", "The selected author id is invalid.")
	}

	if a.PublishedAt == nil {
		now := s.now()
		a.PublishedAt = &now
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx)

	return s.store.Find(ctx, a.ID)
}

// Update loads the article, lets apply change it and saves every column.
func (s *Service) Update(ctx context.Context, id uint, apply func(*model.Article)) (*model.Article, error) {
	a, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	apply(a)
	if err := s.store.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	s.invalidator.Invalidate(ctx)

	return a, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidator.Invalidate(ctx)

	return nil
}
