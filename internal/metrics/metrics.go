package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the planning service
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Database Metrics
	DBQueriesTotal  *prometheus.CounterVec
	DBQueryDuration *prometheus.HistogramVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Domain Metrics
	ConflictChecksTotal *prometheus.CounterVec
	SimulationsActive   prometheus.Gauge
	SimulationEvents    *prometheus.CounterVec
	SessionsActive      prometheus.Gauge
	DispatchJobsTotal   *prometheus.CounterVec
	DispatchQueueDepth  prometheus.Gauge
}

// NewMetricsRegistry registers every metric on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uavops_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "uavops_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "uavops_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Database Metrics
		DBQueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uavops_db_queries_total",
				Help: "Total database queries by operation type",
			},
			[]string{"query_type"},
		),
		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "uavops_db_query_duration_seconds",
				Help:    "Database query execution time in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"query_type"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uavops_cache_hits_total",
				Help: "Total cache hits by cache name",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uavops_cache_misses_total",
				Help: "Total cache misses by cache name",
			},
			[]string{"cache"},
		),

		// Domain Metrics
		ConflictChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uavops_conflict_checks_total",
				Help: "Route conflict checks by outcome",
			},
			[]string{"outcome"},
		),
		SimulationsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "uavops_simulations_active",
				Help: "Simulations currently running or paused",
			},
		),
		SimulationEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uavops_simulation_events_total",
				Help: "Session events published by name",
			},
			[]string{"event"},
		),
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "uavops_sessions_active",
				Help: "Open planning sessions",
			},
		),
		DispatchJobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uavops_dispatch_jobs_total",
				Help: "Work order dispatch jobs by result",
			},
			[]string{"result"},
		),
		DispatchQueueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "uavops_dispatch_queue_depth",
				Help: "Dispatch jobs waiting in the queue",
			},
		),
	}
}

// ObserveCheck records one conflict check.
func (m *MetricsRegistry) ObserveCheck(valid bool) {
	if valid {
		m.ConflictChecksTotal.WithLabelValues("clear").Inc()
		return
	}
	m.ConflictChecksTotal.WithLabelValues("conflict").Inc()
}

// ObserveCache records a cache lookup for the named cache.
func (m *MetricsRegistry) ObserveCache(name string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(name).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(name).Inc()
}
