package comment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SergeyParamoshkin/blog/internal/apperr"
	"github.com/SergeyParamoshkin/blog/internal/article"
	"github.com/SergeyParamoshkin/blog/internal/cache"
	"github.com/SergeyParamoshkin/blog/internal/database/dbtest"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/user"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	cache    *cache.MemoryStore
	articles *article.Service
	service  *Service
	peter    *model.User
	julia    *model.User
	post     *model.Article
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.New(t)
	c := cache.NewMemoryStore()
	users := user.NewStore(db)
	articles := article.NewStore(db)
	peter := dbtest.User(t, db, "peter")

	return &fixture{
		db:       db,
		cache:    c,
		articles: article.NewService(articles, users, c, time.Minute, nil),
		service:  NewService(NewStore(db), articles, users, c),
		peter:    peter,
		julia:    dbtest.User(t, db, "julia"),
		post:     dbtest.Article(t, db, peter, "Hi", "first"),
	}
}

func TestCreateResolvesAuthor(t *testing.T) {
	f := newFixture(t)

	c, err := f.service.Create(context.Background(), &model.Comment{ArticleID: f.post.ID, UserID: f.julia.ID, Content: "nice"})
	if err != nil {
		t.Fatal(err)
	}
	if c.ID == 0 || c.UserName() != "julia" {
		t.Errorf("created %+v", c)
	}
}

func TestCreateChecksReferences(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), &model.Comment{ArticleID: 99, UserID: 98, Content: "x"})

	var v *apperr.ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("err = %v", err)
	}
	if len(v.Fields["article_id"]) == 0 || len(v.Fields["user_id"]) == 0 {
		t.Errorf("fields = %v", v.Fields)
	}
}

func TestCommentCountFollowsMutations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	count := func() int {
		t.Helper()
		list, err := f.articles.Listing(ctx, false)
		if err != nil || len(list) != 1 {
			t.Fatalf("listing = %v, %v", list, err)
		}

		return list[0].CommentsCount
	}

	if n := count(); n != 0 {
		t.Fatalf("initial count = %d", n)
	}

	c, err := f.service.Create(ctx, &model.Comment{ArticleID: f.post.ID, UserID: f.julia.ID, Content: "nice"})
	if err != nil {
		t.Fatal(err)
	}
	if n := count(); n != 1 {
		t.Errorf("count after create = %d", n)
	}

	if _, err := f.service.Update(ctx, c.ID, "nicer"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := f.cache.Get(ctx, cache.ListingKey); ok {
		t.Error("update left listing cached")
	}

	if _, err := f.service.Delete(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	if n := count(); n != 0 {
		t.Errorf("count after delete = %d", n)
	}
}

func TestDeleteReportsRemaining(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := dbtest.Comment(t, f.db, f.post, f.julia, "one")
	second := dbtest.Comment(t, f.db, f.post, f.peter, "two")

	res, err := f.service.Delete(ctx, second.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.RemainingCount != 1 || res.FirstRemaining == nil || res.FirstRemaining.ID != first.ID {
		t.Fatalf("after first delete: %+v", res)
	}

	res, err = f.service.Delete(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.RemainingCount != 0 || res.FirstRemaining != nil {
		t.Fatalf("after last delete: %+v", res)
	}

	if _, err := f.service.Delete(ctx, first.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("repeated delete err = %v", err)
	}
}

func TestUpdateMissing(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.Update(context.Background(), 12345, "x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func newRouter(f *fixture) http.Handler {
	articles := article.NewAPI(f.articles)
	comments := NewAPI(f.service)

	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.With(articles.ArticleCtx).Get("/articles/{articleID}/comments", comments.ListComments)
	r.Route("/comments", comments.Routes)

	return r
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestCommentEndpoints(t *testing.T) {
	f := newFixture(t)
	h := newRouter(f)

	rec := serve(h, http.MethodPost, "/comments", `{"article_id": 1, "user_id": 2, "content": "hello"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rec.Code, rec.Body)
	}
	var created map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &created)
	if created["author"] != "julia" {
		t.Errorf("created = %v", created)
	}

	rec = serve(h, http.MethodGet, "/articles/1/comments", "")
	var list []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Fatalf("list = %d %s", rec.Code, rec.Body)
	}

	if rec := serve(h, http.MethodGet, "/articles/77/comments", ""); rec.Code != http.StatusNotFound {
		t.Errorf("comments of missing article = %d", rec.Code)
	}

	if rec := serve(h, http.MethodPut, "/comments/1", `{"content": ""}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty update = %d", rec.Code)
	}
	if rec := serve(h, http.MethodPut, "/comments/1", `{"content": "edited"}`); rec.Code != http.StatusOK {
		t.Errorf("update = %d %s", rec.Code, rec.Body)
	}
	if rec := serve(h, http.MethodPut, "/comments/50", `{"content": "edited"}`); rec.Code != http.StatusNotFound {
		t.Errorf("update missing = %d", rec.Code)
	}
	if rec := serve(h, http.MethodPatch, "/comments/50", `{"content": ""}`); rec.Code != http.StatusNotFound {
		t.Errorf("invalid update of missing comment = %d, want 404", rec.Code)
	}

	rec = serve(h, http.MethodDelete, "/comments/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete = %d", rec.Code)
	}
	var del map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &del)
	if del["remaining_count"] != float64(0) {
		t.Errorf("remaining_count = %v", del["remaining_count"])
	}
	if v, ok := del["first_remaining"]; !ok || v != nil {
		t.Errorf("first_remaining = %v (present %v)", v, ok)
	}

	if rec := serve(h, http.MethodDelete, "/comments/1", ""); rec.Code != http.StatusNotFound {
		t.Errorf("repeated delete = %d", rec.Code)
	}
}
