package user

import (
	"net/http"
	"strconv"

	"github.com/SergeyParamoshkin/blog/internal/errresponse"
	"github.com/SergeyParamoshkin/blog/internal/logging"
	"github.com/SergeyParamoshkin/blog/internal/userpayload"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type API struct {
	store *Store
}

func NewAPI(store *Store) *API {
	return &API{store: store}
}

func (a *API) Routes(r chi.Router) {
	r.Post("/", a.CreateUser)
	r.Get("/{userID}", a.GetUser)
}

// CreateUser registers a user that articles and comments can reference.
func (a *API) CreateUser(w http.ResponseWriter, r *http.Request) {
	data := &userpayload.UserRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.Respond(w, r, errresponse.FromBind(err))

		return
	}

	u := data.User()
	if err := a.store.Create(r.Context(), u); err != nil {
		errresponse.RespondErr(w, r, err)

		return
	}

	render.Status(r, http.StatusCreated)
	if err := render.Render(w, r, userpayload.NewUserPayloadResponse(u)); err != nil {
		logging.FromContext(r.Context()).Errorw("render user", "error", err)
	}
}

func (a *API) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		errresponse.Respond(w, r, errresponse.ErrNotFound)

		return
	}

	u, err := a.store.Get(r.Context(), uint(id))
	if err != nil {
		errresponse.RespondErr(w, r, err)

		return
	}

	if err := render.Render(w, r, userpayload.NewUserPayloadResponse(u)); err != nil {
		logging.FromContext(r.Context()).Errorw("render user", "error", err)
	}
}
