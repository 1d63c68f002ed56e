package upload

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/SergeyParamoshkin/blog/internal/apperr"
	"github.com/SergeyParamoshkin/blog/internal/errresponse"
	"github.com/SergeyParamoshkin/blog/internal/logging"
	"github.com/SergeyParamoshkin/blog/internal/metrics"
	"github.com/go-chi/render"
)

// multipartSlack covers boundaries and part headers around the file.
const multipartSlack = 64 << 10

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

type API struct {
	processor *Processor
	storage   Storage
	maxBytes  int64
	metrics   *metrics.Instruments
}

func NewAPI(processor *Processor, storage Storage, maxBytes int64, m *metrics.Instruments) *API {
	return &API{processor: processor, storage: storage, maxBytes: maxBytes, metrics: m}
}

// UploadResponse reports the variant set written for an upload.
type UploadResponse struct {
	Message          string             `json:"message"`
	OriginalSize     int64              `json:"original_size"`
	OptimizedSize    int64              `json:"optimized_size"`
	ReductionPercent float64            `json:"reduction_percent"`
	Images           map[string]Variant `json:"images"`
	URL              string             `json:"url"`
}

func (u *UploadResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func NewUploadResponse(res *Result, originalSize int64, storage Storage) *UploadResponse {
	large := res.Variants["large"]

	return &UploadResponse{
		Message:          "Image uploaded and optimized successfully",
		OriginalSize:     originalSize,
		OptimizedSize:    large.Size,
		ReductionPercent: ReductionPercent(originalSize, large.Size),
		Images:           res.Variants,
		URL:              storage.URL(large.Filename),
	}
}

// ReductionPercent is rounded to one decimal; growth yields a negative value.
func ReductionPercent(original, optimized int64) float64 {
	if original <= 0 {
		return 0
	}

	return math.Round((1-float64(optimized)/float64(original))*1000) / 10
}

type errorBody struct {
	HTTPStatusCode int    `json:"-"`
	Error          string `json:"error"`
}

func (e *errorBody) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)

	return nil
}

var errNoImage = &errorBody{HTTPStatusCode: http.StatusBadRequest, Error: "No image provided"}

// UploadImage accepts a multipart "image" field and writes its variants.
func (a *API) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxBytes+multipartSlack)

	if err := r.ParseMultipartForm(a.maxBytes + multipartSlack); err != nil {
		if isTooLarge(err) {
			errresponse.RespondErr(w, r, fmt.Errorf("upload exceeds %d bytes: %w", a.maxBytes, apperr.ErrPayloadTooLarge))

			return
		}
		a.respondNoImage(w, r)

		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("image")
	if err != nil {
		a.respondNoImage(w, r)

		return
	}
	defer file.Close()

	if header.Size > a.maxBytes {
		errresponse.RespondErr(w, r, fmt.Errorf("upload of %d bytes exceeds %d: %w", header.Size, a.maxBytes, apperr.ErrPayloadTooLarge))

		return
	}

	data, err := io.ReadAll(io.LimitReader(file, a.maxBytes+1))
	if err != nil {
		errresponse.RespondErr(w, r, fmt.Errorf("reading upload: %w", err))

		return
	}
	if int64(len(data)) > a.maxBytes {
		errresponse.RespondErr(w, r, fmt.Errorf("upload exceeds %d bytes: %w", a.maxBytes, apperr.ErrPayloadTooLarge))

		return
	}

	if ct := http.DetectContentType(data); !allowedContentTypes[ct] {
		errresponse.RespondErr(w, r, apperr.Invalid("image", "The image must be a file of type: jpeg, png, jpg, gif."))

		return
	}

	res, err := a.processor.Process(r.Context(), data)
	a.metrics.Upload(r.Context(), err, int64(len(data)), resultSize(res))
	if err != nil {
		errresponse.RespondErr(w, r, err)

		return
	}

	logging.FromContext(r.Context()).Infow("image uploaded",
		"base", res.Base, "format", res.Format, "original_size", len(data), "variants_size", res.TotalSize())

	render.Status(r, http.StatusCreated)
	if err := render.Render(w, r, NewUploadResponse(res, int64(len(data)), a.storage)); err != nil {
		logging.FromContext(r.Context()).Errorw("render upload", "error", err)
	}
}

// isTooLarge detects the MaxBytesReader limit, which some multipart paths
// report without wrapping.
func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return true
	}

	return strings.Contains(err.Error(), "request body too large")
}

func (a *API) respondNoImage(w http.ResponseWriter, r *http.Request) {
	if err := render.Render(w, r, errNoImage); err != nil {
		logging.FromContext(r.Context()).Errorw("render error response", "error", err)
	}
}

func resultSize(res *Result) int64 {
	if res == nil {
		return 0
	}

	return res.TotalSize()
}

// DeleteRequest names one stored file relative to the public root.
type DeleteRequest struct {
	Path string `json:"path"`
}

func (d *DeleteRequest) Bind(r *http.Request) error {
	if d.Path == "" {
		return apperr.Invalid("path", "The path field is required.")
	}

	return nil
}

type deleteResponse struct {
	Message string `json:"message"`
}

func (d *deleteResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

var errImageNotFound = &errorBody{HTTPStatusCode: http.StatusNotFound, Error: "Image not found"}

// DeleteImage removes the file named by ?path= or a JSON {"path": ...} body.
func (a *API) DeleteImage(w http.ResponseWriter, r *http.Request) {
	data := &DeleteRequest{Path: r.URL.Query().Get("path")}
	if data.Path == "" && r.ContentLength != 0 {
		if err := render.Bind(r, data); err != nil {
			errresponse.Respond(w, r, errresponse.FromBind(err))

			return
		}
	}

	if err := a.storage.Delete(data.Path); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			if err := render.Render(w, r, errImageNotFound); err != nil {
				logging.FromContext(r.Context()).Errorw("render error response", "error", err)
			}

			return
		}
		errresponse.RespondErr(w, r, err)

		return
	}

	logging.FromContext(r.Context()).Infow("image deleted", "path", data.Path)
	if err := render.Render(w, r, &deleteResponse{Message: "Image deleted successfully"}); err != nil {
		logging.FromContext(r.Context()).Errorw("render message", "error", err)
	}
}
