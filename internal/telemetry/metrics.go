// Package telemetry owns the Prometheus collectors exposed on /metrics.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	tasksTotal       *prometheus.CounterVec
	taskDuration     *prometheus.HistogramVec
	batchesTotal     *prometheus.CounterVec
	creatorsAnalyzed prometheus.Counter
	recordsIngested  *prometheus.CounterVec
	apifyRuns        *prometheus.CounterVec
	avatarDownloads  *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
}

// New registers a fresh set of collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tasksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creatorscope_runner_tasks_total",
				Help: "Tasks executed by the bounded runner",
			},
			[]string{"pool", "result"},
		),
		taskDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "creatorscope_runner_task_duration_seconds",
				Help:    "Duration of runner tasks",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"pool"},
		),
		batchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creatorscope_scoring_batches_total",
				Help: "Scoring batches by outcome",
			},
			[]string{"result"},
		),
		creatorsAnalyzed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "creatorscope_creators_analyzed_total",
				Help: "Creators whose analysis result was stored",
			},
		),
		recordsIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creatorscope_records_ingested_total",
				Help: "Records written by the reconciler",
			},
			[]string{"platform", "kind"},
		),
		apifyRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creatorscope_apify_runs_total",
				Help: "Apify actor runs by terminal status",
			},
			[]string{"actor", "status"},
		),
		avatarDownloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creatorscope_avatar_downloads_total",
				Help: "Avatar downloads by outcome",
			},
			[]string{"result"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creatorscope_http_requests_total",
				Help: "Dashboard requests by method and status",
			},
			[]string{"method", "status"},
		),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.tasksTotal,
		m.taskDuration,
		m.batchesTotal,
		m.creatorsAnalyzed,
		m.recordsIngested,
		m.apifyRuns,
		m.avatarDownloads,
		m.httpRequests,
	)
	return m
}

// Registry exposes the underlying registry for tests and custom handlers.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveTask(pool string, err error, seconds float64) {
	if m == nil {
		return
	}
	m.tasksTotal.WithLabelValues(pool, resultLabel(err)).Inc()
	m.taskDuration.WithLabelValues(pool).Observe(seconds)
}

func (m *Metrics) ObserveBatch(err error) {
	if m == nil {
		return
	}
	m.batchesTotal.WithLabelValues(resultLabel(err)).Inc()
}

func (m *Metrics) AddAnalyzed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.creatorsAnalyzed.Add(float64(n))
}

func (m *Metrics) AddIngested(platform, kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.recordsIngested.WithLabelValues(platform, kind).Add(float64(n))
}

func (m *Metrics) ObserveApifyRun(actor, status string) {
	if m == nil {
		return
	}
	m.apifyRuns.WithLabelValues(actor, status).Inc()
}

func (m *Metrics) ObserveAvatar(result string) {
	if m == nil {
		return
	}
	m.avatarDownloads.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHTTP(method, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, status).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
