package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the field-service
// data core. Construct it once at startup; components tolerate a nil
// registry so tests can skip metrics entirely.
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Store Metrics
	CascadeOpsTotal  prometheus.CounterVec
	CascadeRowsTotal prometheus.CounterVec

	// Scheduling Metrics
	ConflictChecksTotal prometheus.CounterVec
	CheckInsTotal       prometheus.CounterVec

	// Seed Metrics
	SeedRunsTotal    prometheus.Counter
	SeedRowsInserted prometheus.CounterVec

	// View Cache Metrics
	ViewCacheHitsTotal   prometheus.CounterVec
	ViewCacheMissesTotal prometheus.CounterVec
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fieldstore_http_requests_total",
				Help: "Total bridge requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fieldstore_http_request_duration_seconds",
				Help:    "Bridge request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fieldstore_http_requests_in_flight",
				Help: "Number of bridge requests currently being processed",
			},
			[]string{"endpoint"},
		),

		CascadeOpsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fieldstore_cascade_ops_total",
				Help: "Cascade archive engine operations by direction and result",
			},
			[]string{"direction", "result"},
		),
		CascadeRowsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fieldstore_cascade_rows_total",
				Help: "Child rows touched by cascade operations, by table",
			},
			[]string{"table"},
		),

		ConflictChecksTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fieldstore_schedule_conflict_checks_total",
				Help: "Schedule conflict validations by outcome",
			},
			[]string{"outcome"},
		),
		CheckInsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fieldstore_checkins_total",
				Help: "Check-in and check-out attempts by operation and result",
			},
			[]string{"operation", "result"},
		),

		SeedRunsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "fieldstore_seed_runs_total",
				Help: "Completed seed pipeline runs",
			},
		),
		SeedRowsInserted: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fieldstore_seed_rows_inserted_total",
				Help: "Rows inserted by the seed pipeline, by table",
			},
			[]string{"table"},
		),

		ViewCacheHitsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fieldstore_view_cache_hits_total",
				Help: "Query facade cache hits by view key",
			},
			[]string{"view"},
		),
		ViewCacheMissesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fieldstore_view_cache_misses_total",
				Help: "Query facade cache misses by view key",
			},
			[]string{"view"},
		),
	}
}
