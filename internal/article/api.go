package article

import (
	"net/http"
	"time"

	"github.com/SergeyParamoshkin/blog/internal/articlerequest"
	"github.com/SergeyParamoshkin/blog/internal/articleresponse"
	"github.com/SergeyParamoshkin/blog/internal/errresponse"
	"github.com/SergeyParamoshkin/blog/internal/logging"
	"github.com/go-chi/render"
)

type API struct {
	service *Service
}

func NewAPI(service *Service) *API {
	return &API{service: service}
}

// ListArticles serves the cached listing. ?bypass_cache (or the older
// ?performance_test) recomputes it without touching the cache.
func (a *API) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bypass := q.Has("bypass_cache") || q.Has("performance_test")

	list, err := a.service.Listing(r.Context(), bypass)
	if err != nil {
		errresponse.RespondErr(w, r, err)

		return
	}

	if err := render.RenderList(w, r, articleresponse.NewSummaryListResponse(list)); err != nil {
		errresponse.Respond(w, r, errresponse.ErrInternal(err))
	}
}

// SearchArticles matches ?q= against titles and content.
func (a *API) SearchArticles(w http.ResponseWriter, r *http.Request) {
	list, err := a.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		errresponse.RespondErr(w, r, err)

		return
	}

	if err := render.RenderList(w, r, articleresponse.NewSummaryListResponse(list)); err != nil {
		errresponse.Respond(w, r, errresponse.ErrInternal(err))
	}
}

// CreateArticle persists the posted Article and returns it
// back to the client as an acknowledgement.
func (a *API) CreateArticle(w http.ResponseWriter, r *http.Request) {
	data := &articlerequest.ArticleRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.Respond(w, r, errresponse.FromBind(err))

		return
	}

	article, err := a.service.Create(r.Context(), data.Article(time.Now()))
	if err != nil {
		errresponse.RespondErr(w, r, err)

		return
	}

	logging.FromContext(r.Context()).Infow("article created", "id", article.ID, "author_id", article.AuthorID)
	render.Status(r, http.StatusCreated)
	if err := render.Render(w, r, articleresponse.NewArticleResponse(article)); err != nil {
		logging.FromContext(r.Context()).Errorw("render article", "error", err)
	}
}

// GetArticle returns the Article loaded by ArticleCtx.
func (a *API) GetArticle(w http.ResponseWriter, r *http.Request) {
	article := FromContext(r.Context())

	if err := render.Render(w, r, articleresponse.NewArticleDetail(article)); err != nil {
		errresponse.Respond(w, r, errresponse.ErrInternal(err))
	}
}

// UpdateArticle applies a partial update to an existing Article.
func (a *API) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	article := FromContext(r.Context())

	data := &articlerequest.ArticleUpdateRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.Respond(w, r, errresponse.FromBind(err))

		return
	}

	updated, err := a.service.Update(r.Context(), article.ID, data.Apply)
	if err != nil {
		errresponse.RespondErr(w, r, err)

		return
	}

	if err := render.Render(w, r, articleresponse.NewArticleResponse(updated)); err != nil {
		logging.FromContext(r.Context()).Errorw("render article", "error", err)
	}
}

// DeleteArticle removes an existing Article. Its comments are left alone.
func (a *API) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	article := FromContext(r.Context())

	if err := a.service.Delete(r.Context(), article.ID); err != nil {
		errresponse.RespondErr(w, r, err)

		return
	}

	logging.FromContext(r.Context()).Infow("article deleted", "id", article.ID)
	if err := render.Render(w, r, &articleresponse.MessageResponse{Message: "Article deleted successfully"}); err != nil {
		logging.FromContext(r.Context()).Errorw("render message", "error", err)
	}
}
