package comment

import (
	"net/http"
	"strings"

	"github.com/SergeyParamoshkin/blog/internal/apperr"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/go-chi/render"
)

// CommentRequest is the body of POST /comments.
type CommentRequest struct {
	ArticleID uint   `json:"article_id"`
	UserID    uint   `json:"user_id"`
	Content   string `json:"content"`
}

func (c *CommentRequest) Bind(r *http.Request) error {
	v := apperr.NewValidationError()
	if c.ArticleID == 0 {
		v.Add("article_id", "The article id field is required.")
	}
	if c.UserID == 0 {
		v.Add("user_id", "The user id field is required.")
	}
	if strings.TrimSpace(c.Content) == "" {
		v.Add("content", "The content field is required.")
	}

	return v.OrNil()
}

func (c *CommentRequest) Comment() *model.Comment {
	return &model.Comment{ArticleID: c.ArticleID, UserID: c.UserID, Content: c.Content}
}

// CommentUpdateRequest only ever touches the content.
type CommentUpdateRequest struct {
	Content string `json:"content"`
}

func (c *CommentUpdateRequest) Bind(r *http.Request) error {
	if strings.TrimSpace(c.Content) == "" {
		return apperr.Invalid("content", "The content field is required.")
	}

	return nil
}

// CommentResponse is a stored comment with its author's name resolved.
type CommentResponse struct {
	*model.Comment

	Author string `json:"author"`
}

func NewCommentResponse(c *model.Comment) *CommentResponse {
	return &CommentResponse{Comment: c, Author: c.UserName()}
}

func (c *CommentResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func NewCommentListResponse(comments []model.Comment) []render.Renderer {
	list := make([]render.Renderer, 0, len(comments))
	for i := range comments {
		list = append(list, NewCommentResponse(&comments[i]))
	}

	return list
}

// DeleteResponse reports what is left of the thread; first_remaining is
// null once the thread is empty.
type DeleteResponse struct {
	Message        string         `json:"message"`
	RemainingCount int            `json:"remaining_count"`
	FirstRemaining *model.Comment `json:"first_remaining"`
}

func NewDeleteResponse(res *DeleteResult) *DeleteResponse {
	return &DeleteResponse{
		Message:        "Comment deleted successfully",
		RemainingCount: res.RemainingCount,
		FirstRemaining: res.FirstRemaining,
	}
}

func (d *DeleteResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
