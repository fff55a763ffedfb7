// Package metrics exposes prometheus instruments for the provisioning
// engine and the HTTP surface.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Module wires the prometheus registry and instruments.
var Module = fx.Module("metrics",
	fx.Provide(
		NewRegistry,
		New,
		NewHTTPMetrics,
	),
)

func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	return registry
}

// Metrics exposes engine-level instruments.
type Metrics struct {
	provisionTotal      *prometheus.CounterVec
	recoveryTotal       *prometheus.CounterVec
	integrityViolations *prometheus.GaugeVec
	integrityScans      prometheus.Counter
}

func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		provisionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "praxis_provision_total",
			Help: "Tenant provisioning attempts by outcome.",
		}, []string{"outcome"}),
		recoveryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "praxis_recovery_total",
			Help: "Tenant recovery invocations by outcome.",
		}, []string{"outcome"}),
		integrityViolations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "praxis_integrity_violations",
			Help: "Violations found by the most recent integrity scan, by category.",
		}, []string{"category"}),
		integrityScans: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "praxis_integrity_scans_total",
			Help: "Completed integrity scans.",
		}),
	}

	registry.MustRegister(
		m.provisionTotal,
		m.recoveryTotal,
		m.integrityViolations,
		m.integrityScans,
	)
	return m
}

func (m *Metrics) RecordProvision(outcome string) {
	if m == nil {
		return
	}
	m.provisionTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordRecovery(outcome string) {
	if m == nil {
		return
	}
	m.recoveryTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordIntegrityScan(counts map[string]int) {
	if m == nil {
		return
	}
	m.integrityScans.Inc()
	for category, count := range counts {
		m.integrityViolations.WithLabelValues(category).Set(float64(count))
	}
}

// HTTPMetrics instruments inbound requests.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(registry *prometheus.Registry) *HTTPMetrics {
	h := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "praxis_http_requests_total",
			Help: "HTTP requests by route, method, and status code.",
		}, []string{"route", "method", "status_code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "praxis_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	registry.MustRegister(h.requests, h.duration)
	return h
}

// GinMiddleware records request counts and latencies.
func GinMiddleware(h *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		h.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		h.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
