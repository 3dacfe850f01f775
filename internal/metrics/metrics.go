// Package metrics provides Prometheus metrics for the documentation server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Page kinds used as the "kind" label.
const (
	KindDomain   = "domain"
	KindVersion  = "version"
	KindVersions = "versions"
)

// Metrics holds all Prometheus metrics for protodocs.
type Metrics struct {
	PagesRendered   *prometheus.CounterVec
	RenderDuration  *prometheus.HistogramVec
	NotFound        *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec
	DocumentsCached prometheus.Gauge

	registry *prometheus.Registry
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		PagesRendered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protodocs_pages_rendered_total",
				Help: "Total number of pages rendered by kind.",
			},
			[]string{"kind"},
		),
		RenderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "protodocs_render_duration_seconds",
				Help:    "Page render duration by kind.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		NotFound: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protodocs_not_found_total",
				Help: "Requests for unknown versions or domains.",
			},
			[]string{"reason"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protodocs_errors_total",
				Help: "Total errors by module and type.",
			},
			[]string{"module", "type"},
		),
		DocumentsCached: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "protodocs_documents_cached",
				Help: "Number of parsed protocol documents held in memory.",
			},
		),
		registry: reg,
	}

	reg.MustRegister(m.PagesRendered)
	reg.MustRegister(m.RenderDuration)
	reg.MustRegister(m.NotFound)
	reg.MustRegister(m.ErrorsTotal)
	reg.MustRegister(m.DocumentsCached)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRender counts a rendered page and its duration.
func (m *Metrics) RecordRender(kind string, d time.Duration) {
	m.PagesRendered.WithLabelValues(kind).Inc()
	m.RenderDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordNotFound counts a 404 by reason ("version" or "domain").
func (m *Metrics) RecordNotFound(reason string) {
	m.NotFound.WithLabelValues(reason).Inc()
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(module, errType string) {
	m.ErrorsTotal.WithLabelValues(module, errType).Inc()
}

// SetDocumentsCached sets the cached document count.
func (m *Metrics) SetDocumentsCached(count int) {
	m.DocumentsCached.Set(float64(count))
}
