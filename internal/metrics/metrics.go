// Package metrics exposes prometheus instrumentation for the HTTP surface
// and the submission flows.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors registered for the service.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	httpInFlight  prometheus.Gauge
	flowWrites    *prometheus.CounterVec
	flowConflicts prometheus.Counter
}

// New creates and registers the service collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, path and status.",
		}, []string{"service", "method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"service", "method", "path"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "HTTP requests currently being served.",
		}),
		flowWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flow_writes_total",
			Help: "Persisted writes by flow and outcome.",
		}, []string{"flow", "outcome"}),
		flowConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flow_save_conflicts_total",
			Help: "Duplicate saves reported as already-saved.",
		}),
	}

	registry.MustRegister(m.httpRequests, m.httpDuration, m.httpInFlight, m.flowWrites, m.flowConflicts)
	return m
}

// Registry returns the prometheus registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// IncrementInFlight marks a request as started.
func (m *Metrics) IncrementInFlight() { m.httpInFlight.Inc() }

// DecrementInFlight marks a request as finished.
func (m *Metrics) DecrementInFlight() { m.httpInFlight.Dec() }

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(service, method, path, status string, duration time.Duration) {
	m.httpRequests.WithLabelValues(service, method, path, status).Inc()
	m.httpDuration.WithLabelValues(service, method, path).Observe(duration.Seconds())
}

// RecordFlowWrite records a persisted write attempt for a flow.
func (m *Metrics) RecordFlowWrite(flow, outcome string) {
	m.flowWrites.WithLabelValues(flow, outcome).Inc()
}

// RecordSaveConflict records a duplicate save treated as success.
func (m *Metrics) RecordSaveConflict() { m.flowConflicts.Inc() }
