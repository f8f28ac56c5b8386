// Package metrics provides Prometheus metrics for scraping and report generation.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use through a nil pointer; every recorder becomes a no-op.
type Metrics struct {
	PagesScraped     *prometheus.CounterVec
	FetchErrors      *prometheus.CounterVec
	StateTransitions *prometheus.CounterVec
	ReportRequests   *prometheus.CounterVec
	ScrapeDuration   prometheus.Histogram

	registry *prometheus.Registry
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		PagesScraped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adminreport_forum_pages_scraped_total",
				Help: "Forum listing pages parsed, by forum id.",
			},
			[]string{"forum"},
		),
		FetchErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adminreport_fetch_errors_total",
				Help: "Failed fetches by kind.",
			},
			[]string{"kind"},
		),
		StateTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adminreport_report_state_transitions_total",
				Help: "Forum report state transitions by target status.",
			},
			[]string{"status"},
		),
		ReportRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adminreport_report_requests_total",
				Help: "Report requests by report kind and outcome.",
			},
			[]string{"report", "outcome"},
		),
		ScrapeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "adminreport_scrape_duration_seconds",
				Help:    "Duration of a full forum aggregation run.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		registry: reg,
	}

	reg.MustRegister(m.PagesScraped)
	reg.MustRegister(m.FetchErrors)
	reg.MustRegister(m.StateTransitions)
	reg.MustRegister(m.ReportRequests)
	reg.MustRegister(m.ScrapeDuration)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) PageScraped(forumID int) {
	if m == nil {
		return
	}
	m.PagesScraped.WithLabelValues(strconv.Itoa(forumID)).Inc()
}

func (m *Metrics) FetchError(kind string) {
	if m == nil {
		return
	}
	m.FetchErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) StateTransition(status string) {
	if m == nil {
		return
	}
	m.StateTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) ReportRequest(report, outcome string) {
	if m == nil {
		return
	}
	m.ReportRequests.WithLabelValues(report, outcome).Inc()
}

func (m *Metrics) ObserveScrape(seconds float64) {
	if m == nil {
		return
	}
	m.ScrapeDuration.Observe(seconds)
}
