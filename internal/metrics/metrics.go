package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/runnerr0/viewtally/internal/aggregate"
)

// Run outcomes used as the "outcome" label of viewtally_runs_total.
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics holds Prometheus counters and gauges for view tally runs and the
// HTTP adapter.
type Metrics struct {
	registry      *prometheus.Registry
	runsTotal     *prometheus.CounterVec
	pagesTotal    prometheus.Counter
	batchesTotal  *prometheus.CounterVec
	lastViews     prometheus.Gauge
	lastVideos    prometheus.Gauge
	requestsTotal prometheus.Counter
	errorsTotal   prometheus.Counter
}

// New creates and registers the metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "viewtally_runs_total",
			Help: "Aggregation runs by outcome",
		}, []string{"outcome"}),
		pagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "viewtally_search_pages_total",
			Help: "Search result pages fetched",
		}),
		batchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "viewtally_statistics_batches_total",
			Help: "Statistics batches by result (ok or skipped)",
		}, []string{"result"}),
		lastViews: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "viewtally_last_total_views",
			Help: "Total views counted by the last successful run",
		}),
		lastVideos: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "viewtally_last_video_count",
			Help: "Matching videos found by the last successful run",
		}),
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "viewtally_http_requests_total",
			Help: "Total number of HTTP requests received",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "viewtally_http_errors_total",
			Help: "Total number of HTTP responses with error status (4xx or 5xx)",
		}),
	}

	m.registry.MustRegister(
		m.runsTotal,
		m.pagesTotal,
		m.batchesTotal,
		m.lastViews,
		m.lastVideos,
		m.requestsTotal,
		m.errorsTotal,
	)
	return m
}

// Observe records a progress update. It is shaped to be chained into an
// aggregate.ProgressFunc.
func (m *Metrics) Observe(u aggregate.Update) {
	switch u.Kind {
	case aggregate.EventPage:
		m.pagesTotal.Inc()
	case aggregate.EventBatch:
		m.batchesTotal.WithLabelValues("ok").Inc()
	case aggregate.EventBatchSkipped:
		m.batchesTotal.WithLabelValues("skipped").Inc()
	}
}

// RecordRun counts a finished run and, on success, publishes its figures.
func (m *Metrics) RecordRun(res aggregate.Result, err error) {
	m.runsTotal.WithLabelValues(Outcome(err)).Inc()
	if err == nil {
		m.lastViews.Set(float64(res.TotalViews))
		m.lastVideos.Set(float64(res.VideoCount))
	}
}

// Outcome maps a run error to its label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, aggregate.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, aggregate.ErrRunInProgress):
		return OutcomeRejected
	}
	return OutcomeFailed
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
