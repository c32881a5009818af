// Package metrics defines the Prometheus collectors for the API and the
// batch workflows, and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	IngestionRowsTotal   *prometheus.CounterVec
	IngestionCommits     *prometheus.CounterVec
	IngestionDuration    prometheus.Histogram
	RequestDecisions     *prometheus.CounterVec
	BackfillLinksTotal   *prometheus.CounterVec
	JobsRunning          prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		IngestionRowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestion_rows_total",
				Help: "Spreadsheet rows written during ingestion commits, by action (insert, update).",
			},
			[]string{"action"},
		),
		IngestionCommits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestion_commits_total",
				Help: "Ingestion commits by outcome (completed, failed).",
			},
			[]string{"outcome"},
		),
		IngestionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ingestion_commit_duration_seconds",
				Help:    "Wall time of ingestion commits.",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		),
		RequestDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "update_request_decisions_total",
				Help: "Update requests decided, by status.",
			},
			[]string{"status"},
		),
		BackfillLinksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backfill_links_total",
				Help: "Event attendance links visited by the backfill routine, by result.",
			},
			[]string{"result"},
		),
		JobsRunning: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "background_jobs_running",
				Help: "Background jobs currently running.",
			},
		),
		gatherer: gatherer,
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.IngestionRowsTotal,
		m.IngestionCommits,
		m.IngestionDuration,
		m.RequestDecisions,
		m.BackfillLinksTotal,
		m.JobsRunning,
	)

	return m
}

// NewIsolated registers on a fresh registry. Tests and the CLI use it so
// repeated construction does not collide with the default registry.
func NewIsolated() *Metrics {
	reg := prometheus.NewRegistry()
	return New(reg, reg)
}

// Handler returns the scrape endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
