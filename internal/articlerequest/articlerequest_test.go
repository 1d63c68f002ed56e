package articlerequest

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SergeyParamoshkin/blog/internal/apperr"
	"github.com/SergeyParamoshkin/blog/internal/model"
)

func fields(t *testing.T, err error) map[string][]string {
	t.Helper()

	var v *apperr.ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("expected validation error, got %v", err)
	}

	return v.Fields
}

func TestArticleRequestBind(t *testing.T) {
	r := httptest.NewRequest("POST", "/articles", nil)

	req := &ArticleRequest{Title: "  Hi  ", Content: "body", AuthorID: 1, ProtectedID: 99}
	if err := req.Bind(r); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if req.Title != "Hi" || req.ProtectedID != 0 {
		t.Errorf("got title %q id %d", req.Title, req.ProtectedID)
	}

	got := fields(t, (&ArticleRequest{}).Bind(r))
	for _, f := range []string{"title", "content", "author_id"} {
		if len(got[f]) == 0 {
			t.Errorf("missing %s error in %v", f, got)
		}
	}

	long := &ArticleRequest{Title: strings.Repeat("é", 256), Content: "x", AuthorID: 1}
	if got := fields(t, long.Bind(r)); len(got["title"]) == 0 {
		t.Error("256-char title accepted")
	}

	ok := &ArticleRequest{Title: strings.Repeat("é", 255), Content: "x", AuthorID: 1}
	if err := ok.Bind(r); err != nil {
		t.Errorf("255-char title rejected: %v", err)
	}
}

func TestArticleUpdateRequest(t *testing.T) {
	r := httptest.NewRequest("PATCH", "/articles/1", nil)

	title := "New"
	req := &ArticleUpdateRequest{Title: &title}
	if err := req.Bind(r); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	a := &model.Article{Title: "Old", Content: "kept"}
	req.Apply(a)
	if a.Title != "New" || a.Content != "kept" {
		t.Errorf("applied %+v", a)
	}

	empty := ""
	if got := fields(t, (&ArticleUpdateRequest{Content: &empty}).Bind(r)); len(got["content"]) == 0 {
		t.Error("empty content accepted on update")
	}

	if err := (&ArticleUpdateRequest{}).Bind(r); err != nil {
		t.Errorf("empty patch rejected: %v", err)
	}
}
