package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's prometheus collectors. A nil *Metrics is valid
// and records nothing, so components can be built without metrics in tests.
type Metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	actions       *prometheus.CounterVec
	retries       *prometheus.CounterVec
	indexJobs     *prometheus.CounterVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planora_assistant_requests_total",
			Help: "Assistant turns by outcome (ok, fallback, unauthorized, error).",
		}, []string{"outcome"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "planora_stage_duration_seconds",
			Help:    "Duration of each assistant pipeline stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planora_actions_total",
			Help: "Executed actions by kind and result.",
		}, []string{"kind", "result"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planora_upstream_retries_total",
			Help: "Retries of upstream calls after a transient failure.",
		}, []string{"op"}),
		indexJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planora_index_jobs_total",
			Help: "Indexing jobs by result (ok, skipped, failed, dropped).",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.requests,
		m.stageDuration,
		m.actions,
		m.retries,
		m.indexJobs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveRequest(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) ObserveAction(kind, result string) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) ObserveRetry(op string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveIndexJob(result string) {
	if m == nil {
		return
	}
	m.indexJobs.WithLabelValues(result).Inc()
}
