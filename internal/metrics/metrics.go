// Package metrics exposes Prometheus collectors for taxonomy loading and
// lookups. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "xbrlmap"

// Load results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultSkipped = "skipped"
)

// Lookup outcomes.
const (
	OutcomeHit       = "hit"
	OutcomeMiss      = "miss"
	OutcomeAmbiguous = "ambiguous"
	OutcomeError     = "error"
)

// Metrics holds the collectors of one process.
type Metrics struct {
	registry *prometheus.Registry

	loads        *prometheus.CounterVec   // taxonomy builds by result
	loadDuration prometheus.Histogram     // time to parse and build one taxonomy
	registered   prometheus.Gauge         // taxonomies currently served
	lookups      *prometheus.CounterVec   // concept lookups by kind and outcome
	httpRequests *prometheus.CounterVec   // API requests by route and status
	httpDuration *prometheus.HistogramVec // API latency by route
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a dedicated registry.
func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "taxonomy",
			Name:      "loads_total",
			Help:      "Total taxonomy documents loaded, by result",
		}, []string{"result"}),

		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "taxonomy",
			Name:      "load_duration_seconds",
			Help:      "Time to fetch, parse and build one taxonomy",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		registered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "taxonomies_registered",
			Help:      "Number of taxonomies available for queries",
		}),

		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "concept",
			Name:      "lookups_total",
			Help:      "Concept lookups by kind (qname, name, label) and outcome",
		}, []string{"kind", "outcome"}),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern and status code",
		}, []string{"route", "status"}),

		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	for _, c := range []prometheus.Collector{
		m.loads, m.loadDuration, m.registered, m.lookups, m.httpRequests, m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) RecordLoad(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(result).Inc()
	if result != ResultSkipped {
		m.loadDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) SetRegistered(n int) {
	if m == nil {
		return
	}
	m.registered.Set(float64(n))
}

func (m *Metrics) RecordLookup(kind, outcome string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) RecordRequest(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, statusClass(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
