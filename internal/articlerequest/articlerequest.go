package articlerequest

import (
	"net/http"
	"strings"
	"time"

	"github.com/SergeyParamoshkin/blog/internal/apperr"
	"github.com/SergeyParamoshkin/blog/internal/model"
)

const maxTitleLen = 255

// ArticleRequest is the request payload for creating an Article.
//
// Request and response payloads are kept apart from the data model so that
// inputs can be protected (the id is never taken from the client) and outputs
// can carry computed fields.
type ArticleRequest struct {
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	AuthorID  uint    `json:"author_id"`
	ImagePath *string `json:"image_path"`

	ProtectedID uint `json:"id"` // override 'id' json to have more control
}

func (a *ArticleRequest) Bind(r *http.Request) error {
	a.ProtectedID = 0 // unset the protected ID

	v := apperr.NewValidationError()
	checkTitle(v, &a.Title)
	checkContent(v, a.Content)
	if a.AuthorID == 0 {
		v.Add("author_id", "The author id field is required.")
	}
	if a.ImagePath != nil && strings.TrimSpace(*a.ImagePath) == "" {
		a.ImagePath = nil
	}

	return v.OrNil()
}

// Article builds the model to persist, published now.
func (a *ArticleRequest) Article(now time.Time) *model.Article {
	return &model.Article{
		Title:       a.Title,
		Content:     a.Content,
		AuthorID:    a.AuthorID,
		ImagePath:   a.ImagePath,
		PublishedAt: &now,
	}
}

// ArticleUpdateRequest is a partial update: absent fields stay untouched,
// present fields follow the same rules as on create.
type ArticleUpdateRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (a *ArticleUpdateRequest) Bind(r *http.Request) error {
	v := apperr.NewValidationError()
	if a.Title != nil {
		checkTitle(v, a.Title)
	}
	if a.Content != nil {
		checkContent(v, *a.Content)
	}

	return v.OrNil()
}

// Apply copies the present fields onto article.
func (a *ArticleUpdateRequest) Apply(article *model.Article) {
	if a.Title != nil {
		article.Title = *a.Title
	}
	if a.Content != nil {
		article.Content = *a.Content
	}
}

func checkTitle(v *apperr.ValidationError, title *string) {
	*title = strings.TrimSpace(*title)
	switch {
	case *title == "":
		v.Add("title", "The title field is required.")
	case len([]rune(*title)) > maxTitleLen:
		v.Add("title", "The title may not be greater than 255 characters.")
	}
}

func checkContent(v *apperr.ValidationError, content string) {
	if strings.TrimSpace(content) == "" {
		v.Add("content", "The content field is required.")
	}
}
