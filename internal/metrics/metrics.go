// Package metrics holds the Prometheus collectors for parsing, resolution
// and the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "landman"

// Parse outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Resolution outcomes.
const (
	OutcomeCreated = "created"
	OutcomeMatched = "matched"
)

// Metrics owns a private registry so tests can create as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	ParsesTotal        *prometheus.CounterVec
	ParsedRecords      *prometheus.CounterVec
	FlaggedRecords     *prometheus.CounterVec
	ParseDuration      *prometheus.HistogramVec
	ResolutionsTotal   *prometheus.CounterVec
	RelationshipsTotal *prometheus.CounterVec
	RegistryRetries    prometheus.Counter
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

// New creates and registers every collector, plus the Go and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ParsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parses_total",
			Help:      "Documents parsed, by tool and outcome.",
		}, []string{"tool", "outcome"}),
		ParsedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parsed_records_total",
			Help:      "Records produced by parsers, by tool.",
		}, []string{"tool"}),
		FlaggedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flagged_records_total",
			Help:      "Records flagged for review, by tool.",
		}, []string{"tool"}),
		ParseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Document parse time, by tool.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"tool"}),
		ResolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Entity resolutions, by outcome.",
		}, []string{"outcome"}),
		RelationshipsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relationships_proposed_total",
			Help:      "Relationships proposed, by type.",
		}, []string{"type"}),
		RegistryRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_retries_total",
			Help:      "Document ingests retried after a version conflict.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
		m.ParsesTotal,
		m.ParsedRecords,
		m.FlaggedRecords,
		m.ParseDuration,
		m.ResolutionsTotal,
		m.RelationshipsTotal,
		m.RegistryRetries,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveParse records one document parse.
func (m *Metrics) ObserveParse(tool string, records, flagged int, elapsed time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.ParsesTotal.WithLabelValues(tool, outcome).Inc()
	m.ParseDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
	if err == nil {
		m.ParsedRecords.WithLabelValues(tool).Add(float64(records))
		m.FlaggedRecords.WithLabelValues(tool).Add(float64(flagged))
	}
}

// ObserveResolution records whether a resolution created a new entity.
func (m *Metrics) ObserveResolution(created bool) {
	if created {
		m.ResolutionsTotal.WithLabelValues(OutcomeCreated).Inc()
		return
	}
	m.ResolutionsTotal.WithLabelValues(OutcomeMatched).Inc()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
