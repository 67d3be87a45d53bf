package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the storefront API.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	ordersTotal     *prometheus.CounterVec
	uploadsTotal    *prometheus.CounterVec
	authEvents      *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sugarbloom_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sugarbloom_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sugarbloom_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sugarbloom_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		ordersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sugarbloom_orders_total",
				Help: "Total cake orders submitted.",
			},
			[]string{"status"},
		),
		uploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sugarbloom_uploads_total",
				Help: "Total image uploads to object storage.",
			},
			[]string{"bucket", "status"},
		),
		authEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sugarbloom_auth_events_total",
				Help: "Total auth state change events processed.",
			},
			[]string{"event"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrOrder increments the order counter with a status label.
func (m *Metrics) IncrOrder(status string) {
	m.ordersTotal.WithLabelValues(status).Inc()
}

// IncrUpload increments the upload counter for a bucket.
func (m *Metrics) IncrUpload(bucket, status string) {
	m.uploadsTotal.WithLabelValues(bucket, status).Inc()
}

// IncrAuthEvent increments the auth event counter.
func (m *Metrics) IncrAuthEvent(event string) {
	m.authEvents.WithLabelValues(event).Inc()
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
