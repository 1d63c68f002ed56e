package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestStore() (*MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore()
	s.now = clock.now

	return s, clock
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore()

	if err := s.Put(ctx, ListingKey, []byte("v1"), time.Minute); err != nil {
		t.Fatal(err)
	}

	clock.t = clock.t.Add(59 * time.Second)
	if v, ok, _ := s.Get(ctx, ListingKey); !ok || string(v) != "v1" {
		t.Fatalf("before expiry got %q %v", v, ok)
	}

	clock.t = clock.t.Add(time.Second)
	if _, ok, _ := s.Get(ctx, ListingKey); ok {
		t.Fatal("entry still served at its expiry instant")
	}
	if s.Len() != 0 {
		t.Errorf("expired entry kept, len = %d", s.Len())
	}
}

func TestMemoryStoreForget(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	_ = s.Put(ctx, ListingKey, []byte("a"), time.Minute)
	_ = s.Put(ctx, StatsKey, []byte("b"), time.Minute)
	_ = s.Put(ctx, "other", []byte("c"), time.Minute)

	NewInvalidator(s).Invalidate(ctx)

	for _, k := range []string{ListingKey, StatsKey} {
		if _, ok, _ := s.Get(ctx, k); ok {
			t.Errorf("%s survived invalidation", k)
		}
	}
	if _, ok, _ := s.Get(ctx, "other"); !ok {
		t.Error("unrelated key was evicted")
	}
}

func TestMemoryStoreCopiesValue(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	buf := []byte("abc")
	_ = s.Put(ctx, "k", buf, time.Minute)
	buf[0] = 'x'

	v, _, _ := s.Get(ctx, "k")
	if string(v) != "abc" {
		t.Errorf("stored value aliased caller buffer: %q", v)
	}
}

func TestRemember(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore()

	calls := 0
	compute := func(context.Context) ([]string, error) {
		calls++

		return []string{"hi", "sup"}, nil
	}

	v, hit, err := Remember(ctx, s, ListingKey, time.Minute, compute)
	if err != nil || hit {
		t.Fatalf("first call hit=%v err=%v", hit, err)
	}

	v2, hit, err := Remember(ctx, s, ListingKey, time.Minute, compute)
	if err != nil || !hit {
		t.Fatalf("second call hit=%v err=%v", hit, err)
	}
	if diff := cmp.Diff(v, v2); diff != "" {
		t.Errorf("cached value differs (-want +got):\n%s", diff)
	}
	if calls != 1 {
		t.Errorf("compute called %d times", calls)
	}

	clock.t = clock.t.Add(time.Minute)
	if _, hit, _ := Remember(ctx, s, ListingKey, time.Minute, compute); hit {
		t.Error("expired value served")
	}
	if calls != 2 {
		t.Errorf("compute called %d times after expiry", calls)
	}
}

func TestRememberComputeError(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	boom := errors.New("boom")

	_, _, err := Remember(ctx, s, StatsKey, time.Minute, func(context.Context) (int, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if s.Len() != 0 {
		t.Error("failed computation was cached")
	}
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (brokenStore) Put(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func (brokenStore) Forget(context.Context, ...string) error {
	return errors.New("connection refused")
}

func TestRememberDegradesOnBackendFailure(t *testing.T) {
	ctx := context.Background()

	v, hit, err := Remember(ctx, brokenStore{}, ListingKey, time.Minute, func(context.Context) (int, error) {
		return 42, nil
	})
	if err != nil || hit || v != 42 {
		t.Fatalf("got v=%d hit=%v err=%v", v, hit, err)
	}

	// Must not panic or block.
	NewInvalidator(brokenStore{}).Invalidate(ctx)
}
