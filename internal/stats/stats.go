// Package stats serves site-wide counters, memoized under the same "stats"
// key every article and comment write evicts.
package stats

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/SergeyParamoshkin/blog/internal/cache"
	"github.com/SergeyParamoshkin/blog/internal/errresponse"
	"github.com/SergeyParamoshkin/blog/internal/metrics"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/go-chi/render"
	"gorm.io/gorm"
)

type Stats struct {
	Articles          int64      `json:"articles"`
	Comments          int64      `json:"comments"`
	Users             int64      `json:"users"`
	LatestPublishedAt *time.Time `json:"latest_published_at"`
}

func (s *Stats) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type Service struct {
	db      *gorm.DB
	cache   cache.Store
	ttl     time.Duration
	metrics *metrics.Instruments
}

func NewService(db *gorm.DB, c cache.Store, ttl time.Duration, m *metrics.Instruments) *Service {
	return &Service{db: db, cache: c, ttl: ttl, metrics: m}
}

func (s *Service) Get(ctx context.Context, bypass bool) (*Stats, error) {
	if bypass {
		return s.compute(ctx)
	}

	st, hit, err := cache.Remember(ctx, s.cache, cache.StatsKey, s.ttl, s.compute)
	if err != nil {
		return nil, err
	}
	s.metrics.CacheLookup(ctx, cache.StatsKey, hit)

	return st, nil
}

func (s *Service) compute(ctx context.Context) (*Stats, error) {
	db := s.db.WithContext(ctx)
	st := &Stats{}

	if err := db.Model(&model.Article{}).Count(&st.Articles).Error; err != nil {
		return nil, fmt.Errorf("counting articles: %w", err)
	}
	if err := db.Model(&model.Comment{}).Count(&st.Comments).Error; err != nil {
		return nil, fmt.Errorf("counting comments: %w", err)
	}
	if err := db.Model(&model.User{}).Count(&st.Users).Error; err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}

	var latest model.Article
	res := db.Select("published_at").Where("published_at IS NOT NULL").Order("published_at DESC").Limit(1).Find(&latest)
	if res.Error != nil {
		return nil, fmt.Errorf("latest article: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		st.LatestPublishedAt = latest.PublishedAt
	}

	return st, nil
}

// GetStats serves GET /stats; ?bypass_cache (or ?performance_test)
// recomputes.
func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bypass := q.Has("bypass_cache") || q.Has("performance_test")

	st, err := s.Get(r.Context(), bypass)
	if err != nil {
		errresponse.RespondErr(w, r, err)

		return
	}

	if err := render.Render(w, r, st); err != nil {
		errresponse.Respond(w, r, errresponse.ErrInternal(err))
	}
}
