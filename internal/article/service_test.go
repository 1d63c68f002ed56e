package article

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SergeyParamoshkin/blog/internal/apperr"
	"github.com/SergeyParamoshkin/blog/internal/cache"
	"github.com/SergeyParamoshkin/blog/internal/database/dbtest"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/user"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	store   *Store
	cache   *cache.MemoryStore
	service *Service
	peter   *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.New(t)
	store := NewStore(db)
	c := cache.NewMemoryStore()

	return &fixture{
		db:      db,
		store:   store,
		cache:   c,
		service: NewService(store, user.NewStore(db), c, time.Minute, nil),
		peter:   dbtest.User(t, db, "peter"),
	}
}

func TestListingIsCachedUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dbtest.Article(t, f.db, f.peter, "Hi", "first")

	list, err := f.service.Listing(ctx, false)
	if err != nil || len(list) != 1 {
		t.Fatalf("listing = %v, %v", list, err)
	}

	// A write that bypasses the service leaves the cached listing stale.
	dbtest.Article(t, f.db, f.peter, "sneaky", "no invalidation")
	list, _ = f.service.Listing(ctx, false)
	if len(list) != 1 {
		t.Fatalf("cached read returned %d articles, want 1", len(list))
	}

	// Bypass always recomputes.
	if list, _ := f.service.Listing(ctx, true); len(list) != 2 {
		t.Fatalf("bypass read returned %d articles, want 2", len(list))
	}

	created, err := f.service.Create(ctx, &model.Article{Title: "new", Content: "fresh", AuthorID: f.peter.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, _ = f.service.Listing(ctx, false)
	if len(list) != 3 || list[2].ID != created.ID {
		t.Fatalf("listing after create = %+v", list)
	}
	if list[2].Author != "peter" {
		t.Errorf("author = %q", list[2].Author)
	}
}

func TestMutationsEvictListingAndStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := dbtest.Article(t, f.db, f.peter, "Hi", "first")

	seed := func() {
		_ = f.cache.Put(ctx, cache.ListingKey, []byte("[]"), time.Minute)
		_ = f.cache.Put(ctx, cache.StatsKey, []byte("{}"), time.Minute)
	}
	evicted := func(op string) {
		t.Helper()
		for _, k := range []string{cache.ListingKey, cache.StatsKey} {
			if _, ok, _ := f.cache.Get(ctx, k); ok {
				t.Errorf("%s left %s cached", op, k)
			}
		}
	}

	seed()
	if _, err := f.service.Update(ctx, a.ID, func(a *model.Article) { a.Title = "Hello" }); err != nil {
		t.Fatal(err)
	}
	evicted("update")

	seed()
	if err := f.service.Delete(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	evicted("delete")
}

func TestCreateRejectsUnknownAuthor(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), &model.Article{Title: "t", Content: "c", AuthorID: 999})

	var v *apperr.ValidationError
	if !errors.As(err, &v) || len(v.Fields["author_id"]) == 0 {
		t.Fatalf("err = %v", err)
	}
}

func TestCreateSetsPublishedAt(t *testing.T) {
	f := newFixture(t)
	fixed := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	f.service.now = func() time.Time { return fixed }

	a, err := f.service.Create(context.Background(), &model.Article{Title: "t", Content: "c", AuthorID: f.peter.ID})
	if err != nil {
		t.Fatal(err)
	}
	if a.PublishedAt == nil || !a.PublishedAt.Equal(fixed) {
		t.Errorf("published_at = %v", a.PublishedAt)
	}
	if a.Author == nil || a.Author.Name != "peter" {
		t.Errorf("author not loaded: %+v", a.Author)
	}
}

func TestGetLoadsThread(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	julia := dbtest.User(t, f.db, "julia")
	a := dbtest.Article(t, f.db, f.peter, "Hi", "first")
	dbtest.Comment(t, f.db, a, julia, "one")
	dbtest.Comment(t, f.db, a, f.peter, "two")

	got, err := f.service.Get(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.AuthorName() != "peter" || len(got.Comments) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got.Comments[0].UserName() != "julia" || got.Comments[1].UserName() != "peter" {
		t.Errorf("comment users = %q, %q", got.Comments[0].UserName(), got.Comments[1].UserName())
	}

	if _, err := f.service.Get(ctx, a.ID+100); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing article err = %v", err)
	}
}

func TestUpdateAndDeleteMissing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.service.Update(ctx, 42, func(*model.Article) {}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("update err = %v", err)
	}
	if err := f.service.Delete(ctx, 42); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("delete err = %v", err)
	}
}

func TestUpdateRefoldsSearchColumns(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := dbtest.Article(t, f.db, f.peter, "Plain", "nothing here")

	if _, err := f.service.Update(ctx, a.ID, func(a *model.Article) { a.Content = "Crème brûlée" }); err != nil {
		t.Fatal(err)
	}

	list, err := f.service.Search(ctx, "BRULEE")
	if err != nil || len(list) != 1 {
		t.Fatalf("search after update = %v, %v", list, err)
	}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dbtest.Article(t, f.db, f.peter, "Un matin", "Le café crème du matin")
	dbtest.Article(t, f.db, f.peter, "CAFÉ society", "in the title")
	dbtest.Article(t, f.db, f.peter, "Tea", "100% leaves")
	dbtest.Article(t, f.db, f.peter, "Other", "nothing_relevant")

	tests := []struct {
		q    string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"cafe", []string{"Un matin", "CAFÉ society"}},
		{"Café", []string{"Un matin", "CAFÉ society"}},
		{"MATIN", []string{"Un matin"}},
		{"%", []string{"Tea"}},
		{"_", []string{"Other"}},
		{"zzz", nil},
		{"' OR 1=1 --", nil},
	}

	for _, tt := range tests {
		list, err := f.service.Search(ctx, tt.q)
		if err != nil {
			t.Fatalf("Search(%q): %v", tt.q, err)
		}
		if list == nil {
			t.Errorf("Search(%q) returned nil, want empty slice", tt.q)
		}

		var got []string
		for _, s := range list {
			got = append(got, s.Title)
		}
		if len(got) != len(tt.want) {
			t.Errorf("Search(%q) = %v, want %v", tt.q, got, tt.want)

			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Search(%q) = %v, want %v", tt.q, got, tt.want)

				break
			}
		}
	}
}
