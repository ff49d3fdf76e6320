package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the follow-up service.
// A nil registry is valid; every recorder method is then a no-op.
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Lifecycle Metrics
	DispatchOutcomesTotal *prometheus.CounterVec
	IntegrationsTotal     prometheus.Counter
	PartialFailuresTotal  prometheus.Counter
	TransitionsTotal      *prometheus.CounterVec
	RetentionSweptTotal   *prometheus.CounterVec
	JobDuration           *prometheus.HistogramVec
}

// NewMetricsRegistry registers the metrics on reg. Pass
// prometheus.DefaultRegisterer in production and prometheus.NewRegistry() in
// tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soultrack_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "soultrack_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "soultrack_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soultrack_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soultrack_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Lifecycle Metrics
		DispatchOutcomesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soultrack_dispatch_outcomes_total",
				Help: "Dispatched contacts by outcome (sent, already_sent, failed)",
			},
			[]string{"outcome"},
		),
		IntegrationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "soultrack_integrations_total",
				Help: "Contacts handed off to the member registry",
			},
		),
		PartialFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "soultrack_handoff_partial_failures_total",
				Help: "Hand-offs that left rows needing reconciliation",
			},
		),
		TransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soultrack_status_transitions_total",
				Help: "Applied status transitions by target status",
			},
			[]string{"to"},
		),
		RetentionSweptTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soultrack_retention_swept_total",
				Help: "Rows purged by the retention sweep by table",
			},
			[]string{"table"},
		),
		JobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "soultrack_job_duration_seconds",
				Help:    "Background job execution time in seconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
			},
			[]string{"job_name"},
		),
	}
}

func (m *MetricsRegistry) RecordDispatch(outcome string) {
	if m == nil {
		return
	}
	m.DispatchOutcomesTotal.WithLabelValues(outcome).Inc()
}

func (m *MetricsRegistry) RecordIntegration() {
	if m == nil {
		return
	}
	m.IntegrationsTotal.Inc()
}

func (m *MetricsRegistry) RecordPartialFailure() {
	if m == nil {
		return
	}
	m.PartialFailuresTotal.Inc()
}

func (m *MetricsRegistry) RecordTransition(to string) {
	if m == nil {
		return
	}
	m.TransitionsTotal.WithLabelValues(to).Inc()
}

func (m *MetricsRegistry) RecordSwept(table string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.RetentionSweptTotal.WithLabelValues(table).Add(float64(n))
}

func (m *MetricsRegistry) ObserveJob(name string, seconds float64) {
	if m == nil {
		return
	}
	m.JobDuration.WithLabelValues(name).Observe(seconds)
}

// RecordCache counts a hit or a miss for pattern.
func (m *MetricsRegistry) RecordCache(pattern string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(pattern).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(pattern).Inc()
}
