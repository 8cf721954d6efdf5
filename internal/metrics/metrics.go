// Package metrics exposes table server metrics in the Prometheus format.
//
// A Metrics value owns its own registry so tests and multiple servers in
// one process never collide on the global default registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Export outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

// Metrics collects row model, page cache, export and session metrics.
type Metrics struct {
	registry *prometheus.Registry

	computeDuration *prometheus.HistogramVec
	filteredRows    *prometheus.GaugeVec
	cacheRequests   *prometheus.CounterVec
	exports         *prometheus.CounterVec
	exportRows      *prometheus.HistogramVec
	sessions        prometheus.Gauge
}

// New creates the collectors under namespace and registers them, along with
// the Go runtime and process collectors, on a fresh registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "datagrid"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		computeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "row_model_compute_seconds",
				Help:      "Time spent filtering and sorting a table's rows",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"table"},
		),
		filteredRows: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "filtered_rows",
				Help:      "Rows left after the last filter pass",
			},
			[]string{"table"},
		),
		cacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "page_cache_requests_total",
				Help:      "Page cache lookups by result",
			},
			[]string{"source", "result"},
		),
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Exports by format and outcome",
			},
			[]string{"format", "outcome"},
		),
		exportRows: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "export_rows",
				Help:      "Rows per successful export",
				Buckets:   []float64{1, 10, 100, 1000, 10000, 100000},
			},
			[]string{"format"},
		),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Client sessions currently holding table state",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.computeDuration,
		m.filteredRows,
		m.cacheRequests,
		m.exports,
		m.exportRows,
		m.sessions,
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCompute records one row model computation.
func (m *Metrics) ObserveCompute(table string, d time.Duration, rows int) {
	m.computeDuration.WithLabelValues(table).Observe(d.Seconds())
	m.filteredRows.WithLabelValues(table).Set(float64(rows))
}

// ComputeHook returns an OnCompute callback bound to a table id.
func (m *Metrics) ComputeHook(table string) func(d time.Duration, rows int) {
	return func(d time.Duration, rows int) {
		m.ObserveCompute(table, d, rows)
	}
}

// CacheHit counts a page served from cache.
func (m *Metrics) CacheHit(source string) {
	m.cacheRequests.WithLabelValues(source, "hit").Inc()
}

// CacheMiss counts a page that had to be fetched.
func (m *Metrics) CacheMiss(source string) {
	m.cacheRequests.WithLabelValues(source, "miss").Inc()
}

// Export counts an export attempt. rows is recorded for successful exports.
func (m *Metrics) Export(format, outcome string, rows int) {
	m.exports.WithLabelValues(format, outcome).Inc()
	if outcome == OutcomeOK {
		m.exportRows.WithLabelValues(format).Observe(float64(rows))
	}
}

// SessionOpened increments the active session gauge.
func (m *Metrics) SessionOpened() { m.sessions.Inc() }

// SessionClosed decrements the active session gauge.
func (m *Metrics) SessionClosed() { m.sessions.Dec() }
