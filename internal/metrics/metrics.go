// Package metrics tracks pipeline run outcomes and exposes them in
// Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics captures shared operational stats for pipeline runs.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal   prometheus.Counter
	runFailures prometheus.Counter
	runDuration prometheus.Histogram
	mergedRows  prometheus.Gauge
	summaryRows prometheus.Gauge
}

// New creates a Metrics instance with its own registry, so tests never
// collide on the global one.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		runsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "coverage_runs_total",
			Help: "Pipeline runs attempted.",
		}),
		runFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "coverage_run_failures_total",
			Help: "Pipeline runs that failed before a snapshot was saved.",
		}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "coverage_run_duration_seconds",
			Help:    "Wall time of a full pipeline run.",
			Buckets: prometheus.DefBuckets,
		}),
		mergedRows: factory.NewGauge(prometheus.GaugeOpts{
			Name: "coverage_last_run_merged_rows",
			Help: "Merged rows in the most recent successful run.",
		}),
		summaryRows: factory.NewGauge(prometheus.GaugeOpts{
			Name: "coverage_last_run_summary_rows",
			Help: "Summary rows in the most recent successful run.",
		}),
	}
}

// ObserveRun records one run attempt.
func (m *Metrics) ObserveRun(d time.Duration, mergedRows, summaryRows int, err error) {
	m.runsTotal.Inc()
	m.runDuration.Observe(d.Seconds())
	if err != nil {
		m.runFailures.Inc()
		return
	}
	m.mergedRows.Set(float64(mergedRows))
	m.summaryRows.Set(float64(summaryRows))
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
