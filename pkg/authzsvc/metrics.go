package authzsvc

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the authorization service.
// Scoped to the two things an operator actually pages on: how the HTTP API
// is performing, and what the authorizer is deciding.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	authzDecisionsTotal *prometheus.CounterVec
	authzDecisionTime   *prometheus.HistogramVec
}

// NewMetrics builds a fresh registry and registers every collector.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aspen",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests handled by the authorization service, by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aspen",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds, by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		authzDecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aspen",
			Subsystem: "authz",
			Name:      "decisions_total",
			Help:      "Total authorization decisions, by outcome.",
		}, []string{"decision"}),
		authzDecisionTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aspen",
			Subsystem: "authz",
			Name:      "decision_duration_seconds",
			Help:      "Time spent evaluating an authorization request, in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"decision"}),
	}

	registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.authzDecisionsTotal,
		m.authzDecisionTime,
	)

	return m
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAuthzDecision records the outcome and latency of one Authorize call.
func (m *Metrics) ObserveAuthzDecision(allowed bool, duration time.Duration) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	m.authzDecisionsTotal.WithLabelValues(decision).Inc()
	m.authzDecisionTime.WithLabelValues(decision).Observe(duration.Seconds())
}

// Middleware wraps an http.Handler, recording request count and latency
// per route template (not per raw path, to keep cardinality bounded).
func (m *Metrics) Middleware(routeTemplate string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rw, r)

			m.httpRequestsTotal.WithLabelValues(routeTemplate, r.Method, strconv.Itoa(rw.status)).Inc()
			m.httpRequestDuration.WithLabelValues(routeTemplate, r.Method).Observe(time.Since(start).Seconds())
		})
	}
}

// statusRecorder captures the status code written by a downstream handler
// so the metrics middleware can label requests by outcome.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
