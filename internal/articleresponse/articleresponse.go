package articleresponse

import (
	"net/http"
	"time"

	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/userpayload"
	"github.com/go-chi/render"
)

const (
	excerptLen    = 200
	excerptMarker = "..."
)

// ArticleSummary is the listing projection. It is what the listing cache
// stores, so it must round-trip through JSON.
type ArticleSummary struct {
	ID            uint       `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Author        string     `json:"author"`
	CommentsCount int        `json:"comments_count"`
	PublishedAt   *time.Time `json:"published_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewSummary expects Author and Comments to be preloaded.
func NewSummary(a *model.Article) ArticleSummary {
	return ArticleSummary{
		ID:            a.ID,
		Title:         a.Title,
		Content:       Excerpt(a.Content),
		Author:        a.AuthorName(),
		CommentsCount: len(a.Comments),
		PublishedAt:   a.PublishedAt,
		CreatedAt:     a.CreatedAt,
	}
}

func NewSummaries(articles []model.Article) []ArticleSummary {
	list := make([]ArticleSummary, 0, len(articles))
	for i := range articles {
		list = append(list, NewSummary(&articles[i]))
	}

	return list
}

func (s ArticleSummary) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func NewSummaryListResponse(list []ArticleSummary) []render.Renderer {
	out := make([]render.Renderer, 0, len(list))
	for _, s := range list {
		out = append(out, s)
	}

	return out
}

// Excerpt keeps the first 200 characters and always appends the marker.
func Excerpt(content string) string {
	runes := []rune(content)
	if len(runes) > excerptLen {
		runes = runes[:excerptLen]
	}

	return string(runes) + excerptMarker
}

// ArticleDetail is the single-article view with its comment thread.
type ArticleDetail struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Content     string           `json:"content"`
	Author      string           `json:"author"`
	AuthorID    uint             `json:"author_id"`
	ImagePath   *string          `json:"image_path"`
	PublishedAt *time.Time       `json:"published_at"`
	CreatedAt   time.Time        `json:"created_at"`
	Comments    []CommentSummary `json:"comments"`
}

type CommentSummary struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	User      string    `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

// NewArticleDetail expects Author, Comments and Comments.User to be preloaded.
func NewArticleDetail(a *model.Article) *ArticleDetail {
	d := &ArticleDetail{
		ID:          a.ID,
		Title:       a.Title,
		Content:     a.Content,
		Author:      a.AuthorName(),
		AuthorID:    a.AuthorID,
		ImagePath:   a.ImagePath,
		PublishedAt: a.PublishedAt,
		CreatedAt:   a.CreatedAt,
		Comments:    make([]CommentSummary, 0, len(a.Comments)),
	}
	for i := range a.Comments {
		c := &a.Comments[i]
		d.Comments = append(d.Comments, CommentSummary{
			ID:        c.ID,
			Content:   c.Content,
			User:      c.UserName(),
			CreatedAt: c.CreatedAt,
		})
	}

	return d
}

func (d *ArticleDetail) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// ArticleResponse is the payload returned after a create or update: the
// stored record plus its author.
type ArticleResponse struct {
	*model.Article

	Author *userpayload.UserPayload `json:"author,omitempty"`
}

func NewArticleResponse(article *model.Article) *ArticleResponse {
	resp := &ArticleResponse{Article: article}
	if article.Author != nil {
		resp.Author = userpayload.NewUserPayloadResponse(article.Author)
	}

	return resp
}

func (rd *ArticleResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// MessageResponse is a bare confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

func (m *MessageResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
