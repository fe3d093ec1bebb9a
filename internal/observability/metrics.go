package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gateway's Prometheus collectors on a private registry.
type Metrics struct {
	registry       *prometheus.Registry
	requests       *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	errors         *prometheus.CounterVec
	guardDecisions *prometheus.CounterVec
	backendCalls   *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_gateway_http_requests_total",
			Help: "HTTP requests served by the gateway",
		}, []string{"route", "method", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_gateway_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_gateway_http_errors_total",
			Help: "Errors rendered by the error middleware",
		}, []string{"route", "method", "code"}),
		guardDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_gateway_guard_decisions_total",
			Help: "Edge guard decisions by path class and action",
		}, []string{"class", "action"}),
		backendCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_gateway_backend_calls_total",
			Help: "Calls to the backend auth API by operation and outcome",
		}, []string{"operation", "outcome"}),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordGuardDecision counts one edge guard outcome.
func (m *Metrics) RecordGuardDecision(class, action string) {
	if m == nil {
		return
	}
	m.guardDecisions.WithLabelValues(class, action).Inc()
}

// RecordBackendCall counts one call to the backend API.
func (m *Metrics) RecordBackendCall(operation, outcome string) {
	if m == nil {
		return
	}
	m.backendCalls.WithLabelValues(operation, outcome).Inc()
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
