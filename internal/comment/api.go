package comment

import (
	"net/http"
	"strconv"

	"github.com/SergeyParamoshkin/blog/internal/article"
	"github.com/SergeyParamoshkin/blog/internal/errresponse"
	"github.com/SergeyParamoshkin/blog/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type API struct {
	service *Service
}

func NewAPI(service *Service) *API {
	return &API{service: service}
}

// Routes mounts the /comments resource.
func (a *API) Routes(r chi.Router) {
	r.Post("/", a.CreateComment)
	r.Route("/{commentID}", func(r chi.Router) {
		r.Put("/", a.UpdateComment)
		r.Patch("/", a.UpdateComment)
		r.Delete("/", a.DeleteComment)
	})
}

// ListComments must be mounted under article.ArticleCtx.
func (a *API) ListComments(w http.ResponseWriter, r *http.Request) {
	art := article.FromContext(r.Context())

	comments, err := a.service.ForArticle(r.Context(), art.ID)
	if err != nil {
		errresponse.RespondErr(w, r, err)

		return
	}

	if err := render.RenderList(w, r, NewCommentListResponse(comments)); err != nil {
		errresponse.Respond(w, r, errresponse.ErrInternal(err))
	}
}

func (a *API) CreateComment(w http.ResponseWriter, r *http.Request) {
	data := &CommentRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.Respond(w, r, errresponse.FromBind(err))

		return
	}

	c, err := a.service.Create(r.Context(), data.Comment())
	if err != nil {
		errresponse.RespondErr(w, r, err)

		return
	}

	render.Status(r, http.StatusCreated)
	if err := render.Render(w, r, NewCommentResponse(c)); err != nil {
		logging.FromContext(r.Context()).Errorw("render comment", "error", err)
	}
}

func (a *API) UpdateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := commentID(r)
	if !ok {
		errresponse.Respond(w, r, errresponse.ErrNotFound)

		return
	}

	// A missing comment is reported before the body is looked at.
	if _, err := a.service.Get(r.Context(), id); err != nil {
		errresponse.RespondErr(w, r, err)

		return
	}

	data := &CommentUpdateRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.Respond(w, r, errresponse.FromBind(err))

		return
	}

	c, err := a.service.Update(r.Context(), id, data.Content)
	if err != nil {
		errresponse.RespondErr(w, r, err)

		return
	}

	if err := render.Render(w, r, NewCommentResponse(c)); err != nil {
		logging.FromContext(r.Context()).Errorw("render comment", "error", err)
	}
}

func (a *API) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := commentID(r)
	if !ok {
		errresponse.Respond(w, r, errresponse.ErrNotFound)

		return
	}

	res, err := a.service.Delete(r.Context(), id)
	if err != nil {
		errresponse.RespondErr(w, r, err)

		return
	}

	if err := render.Render(w, r, NewDeleteResponse(res)); err != nil {
		logging.FromContext(r.Context()).Errorw("render comment deletion", "error", err)
	}
}

func commentID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "commentID"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}

	return uint(id), true
}
