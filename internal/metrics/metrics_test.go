package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/metric/global"
)

func TestMiddlewarePassesThrough(t *testing.T) {
	m := New(global.Meter("test"))

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestRecordersDoNotPanic(t *testing.T) {
	m := New(global.Meter("test"))
	ctx := context.Background()

	m.CacheLookup(ctx, "articles.index", true)
	m.CacheLookup(ctx, "articles.index", false)
	m.Upload(ctx, nil, 1000, 400)
	m.Upload(ctx, errors.New("boom"), 1000, 0)
}

func TestNilInstruments(t *testing.T) {
	var m *Instruments
	m.CacheLookup(context.Background(), "stats", true)
	m.Upload(context.Background(), nil, 1, 1)
}
