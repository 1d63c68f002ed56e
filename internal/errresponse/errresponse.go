package errresponse

import (
	"context"
	"errors"
	"net/http"

	"github.com/SergeyParamoshkin/blog/internal/apperr"
	"github.com/SergeyParamoshkin/blog/internal/logging"
	"github.com/go-chi/render"
)

// ErrResponse renderer type for handling all sorts of errors.
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText string              `json:"status"`           // user-level status message
	ErrorText  string              `json:"error,omitempty"`  // application-level error message
	Fields     map[string][]string `json:"errors,omitempty"` // per-field validation messages
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)

	return nil
}

// Internal reports whether the response hides a server-side fault.
func (e *ErrResponse) Internal() bool {
	return e.HTTPStatusCode == http.StatusInternalServerError
}

func ErrInvalidRequest(err error) *ErrResponse {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrValidation(err *apperr.ValidationError) *ErrResponse {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		StatusText:     "Validation failed.",
		ErrorText:      err.Error(),
		Fields:         err.Fields,
	}
}

func ErrTooLarge(err error) *ErrResponse {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusRequestEntityTooLarge,
		StatusText:     "Payload too large.",
		ErrorText:      err.Error(),
	}
}

func ErrUnsupportedImage(err error) *ErrResponse {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		StatusText:     "Unsupported image.",
		ErrorText:      err.Error(),
	}
}

// ErrTimeout answers a request whose deadline passed mid-handler.
func ErrTimeout(err error) *ErrResponse {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusGatewayTimeout,
		StatusText:     "Request timed out.",
	}
}

// ErrInternal never exposes the cause to the client.
func ErrInternal(err error) *ErrResponse {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal server error.",
	}
}

var ErrNotFound = &ErrResponse{HTTPStatusCode: http.StatusNotFound, StatusText: "Resource not found."}

var ErrTooManyRequests = &ErrResponse{HTTPStatusCode: http.StatusTooManyRequests, StatusText: "Too many requests."}

// From maps an error returned by a service onto its response class.
func From(err error) *ErrResponse {
	var verr *apperr.ValidationError

	switch {
	case errors.As(err, &verr):
		return ErrValidation(verr)
	case errors.Is(err, apperr.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, apperr.ErrPayloadTooLarge):
		return ErrTooLarge(err)
	case errors.Is(err, apperr.ErrImageDecode):
		return ErrUnsupportedImage(err)
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout(err)
	default:
		return ErrInternal(err)
	}
}

// FromBind maps a render.Bind failure: Binder validation errors keep their
// field detail, anything else is a malformed body.
func FromBind(err error) *ErrResponse {
	if apperr.IsValidation(err) {
		return From(err)
	}

	return ErrInvalidRequest(err)
}

// Respond renders e, logging hidden server-side causes.
func Respond(w http.ResponseWriter, r *http.Request, e *ErrResponse) {
	logger := logging.FromContext(r.Context())
	switch {
	case e.Internal():
		logger.Errorw("request failed", "error", e.Err)
	case e.HTTPStatusCode == http.StatusGatewayTimeout:
		logger.Warnw("request timed out", "error", e.Err)
	}
	if err := render.Render(w, r, e); err != nil {
		logger.Errorw("render error response", "error", err)
	}
}

// RespondErr is Respond(w, r, From(err)).
func RespondErr(w http.ResponseWriter, r *http.Request, err error) {
	Respond(w, r, From(err))
}
