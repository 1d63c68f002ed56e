package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	export "go.opentelemetry.io/otel/sdk/export/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregator/histogram"
	controller "go.opentelemetry.io/otel/sdk/metric/controller/basic"
	processor "go.opentelemetry.io/otel/sdk/metric/processor/basic"
	selector "go.opentelemetry.io/otel/sdk/metric/selector/simple"
)

var (
	statusKey = attribute.Key("http.status_code")
	methodKey = attribute.Key("http.method")
	cacheKey  = attribute.Key("cache.key")
	resultKey = attribute.Key("result")
)

// Instruments is the set of instruments the API records into.
type Instruments struct {
	completed      metric.Int64Counter
	duration       metric.Float64ValueRecorder
	cacheLookups   metric.Int64Counter
	uploads        metric.Int64Counter
	uploadBytesIn  metric.Int64Counter
	uploadBytesOut metric.Int64Counter
}

// Setup installs a Prometheus-backed global meter provider and returns the
// exporter, which doubles as the /metrics handler.
func Setup() (*prometheus.Exporter, error) {
	config := prometheus.Config{}
	c := controller.New(
		processor.New(
			selector.NewWithHistogramDistribution(
				histogram.WithExplicitBoundaries(config.DefaultHistogramBoundaries),
			),
			export.CumulativeExportKindSelector(),
			processor.WithMemory(true),
		),
	)
	exporter, err := prometheus.New(config, c)
	if err != nil {
		return nil, err
	}
	global.SetMeterProvider(exporter.MeterProvider())

	return exporter, nil
}

// New creates instruments on meter. Use global.Meter(name) after Setup, or
// any meter in tests.
func New(meter metric.Meter) *Instruments {
	must := metric.Must(meter)

	return &Instruments{
		completed: must.NewInt64Counter(
			"http/server/completed_count",
			metric.WithDescription("Count of completed requests, by HTTP method and response status"),
		),
		duration: must.NewFloat64ValueRecorder(
			"http/server/duration_ms",
			metric.WithDescription("Request duration in milliseconds"),
		),
		cacheLookups: must.NewInt64Counter(
			"cache/lookups",
			metric.WithDescription("Cache lookups, by key and hit/miss"),
		),
		uploads: must.NewInt64Counter(
			"images/uploads",
			metric.WithDescription("Processed image uploads, by result"),
		),
		uploadBytesIn: must.NewInt64Counter(
			"images/bytes_in",
			metric.WithDescription("Bytes of original uploads"),
		),
		uploadBytesOut: must.NewInt64Counter(
			"images/bytes_out",
			metric.WithDescription("Bytes written across all variants"),
		),
	}
}

// Middleware counts completed requests and their latency.
func (m *Instruments) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := []attribute.KeyValue{
			methodKey.String(r.Method),
			statusKey.String(strconv.Itoa(status)),
		}
		m.completed.Add(r.Context(), 1, labels...)
		m.duration.Record(r.Context(), float64(time.Since(start).Microseconds())/1000, labels...)
	})
}

// CacheLookup and Upload are no-ops on a nil receiver.
func (m *Instruments) CacheLookup(ctx context.Context, key string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Add(ctx, 1, cacheKey.String(key), resultKey.String(result))
}

func (m *Instruments) Upload(ctx context.Context, err error, in, out int64) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.uploads.Add(ctx, 1, resultKey.String(result))
	m.uploadBytesIn.Add(ctx, in)
	if out > 0 {
		m.uploadBytesOut.Add(ctx, out)
	}
}
