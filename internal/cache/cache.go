// Package cache is the key-value memoization layer shared by the listing and
// stats reads. Values are opaque bytes with an explicit TTL; eviction is
// explicit through Forget.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/SergeyParamoshkin/blog/internal/logging"
)

const (
	ListingKey = "articles.index"
	StatsKey   = "stats"
)

// Store is the get/put/forget capability every backend provides.
type Store interface {
	// Get returns the value for key; found is false on a miss or after expiry.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Forget(ctx context.Context, keys ...string) error
}

// Remember returns the value stored under key, or computes, stores and
// returns it. hit reports whether the stored value was used. Backend errors
// degrade to a recompute and are logged; only compute errors are returned.
func Remember[T any](ctx context.Context, s Store, key string, ttl time.Duration,
	compute func(context.Context) (T, error),
) (value T, hit bool, err error) {
	logger := logging.FromContext(ctx)

	data, found, err := s.Get(ctx, key)
	switch {
	case err != nil:
		logger.Warnw("cache get failed", "key", key, "error", err)
	case found:
		if err := json.Unmarshal(data, &value); err == nil {
			return value, true, nil
		}
		logger.Warnw("cache entry undecodable, recomputing", "key", key)
	}

	value, err = compute(ctx)
	if err != nil {
		return value, false, err
	}

	data, err = json.Marshal(value)
	if err != nil {
		logger.Warnw("cache encode failed", "key", key, "error", err)

		return value, false, nil
	}
	if err := s.Put(ctx, key, data, ttl); err != nil {
		logger.Warnw("cache put failed", "key", key, "error", err)
	}

	return value, false, nil
}

// Invalidator evicts every key derived from articles and comments. Any
// mutation drops the whole listing and the stats.
type Invalidator struct {
	Store Store
	Keys  []string
}

func NewInvalidator(s Store) *Invalidator {
	return &Invalidator{Store: s, Keys: []string{ListingKey, StatsKey}}
}

// Invalidate is called after a write commits. Failures are logged, never
// returned.
func (i *Invalidator) Invalidate(ctx context.Context) {
	if err := i.Store.Forget(ctx, i.Keys...); err != nil {
		logging.FromContext(ctx).Warnw("cache invalidation failed", "keys", i.Keys, "error", err)
	}
}
