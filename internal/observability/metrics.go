// Package observability holds the Prometheus metrics exported by the server.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Share resolution outcomes.
const (
	OutcomeResolved = "resolved"
	OutcomeRejected = "rejected"
)

// Metrics collects the Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	handler          http.Handler
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	shareResolutions *prometheus.CounterVec
	settlementSteps  prometheus.Histogram
}

// NewMetrics sets up a private registry with the HTTP and ledger metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settleup_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "settleup_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settleup_share_resolutions_total",
		Help: "Share resolutions by outcome and error kind.",
	}, []string{"outcome", "kind"})
	steps := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "settleup_settlement_transfers",
		Help:    "Number of transfers in each computed settlement plan.",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
	})
	registry.MustRegister(requests, duration, resolutions, steps)
	return &Metrics{
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:    requests,
		requestDuration:  duration,
		shareResolutions: resolutions,
		settlementSteps:  steps,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records a request count and latency for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ShareResolution counts one share resolution. kind is the error kind for
// rejected resolutions; an empty kind is recorded as "none".
func (m *Metrics) ShareResolution(outcome, kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "none"
	}
	m.shareResolutions.WithLabelValues(outcome, kind).Inc()
}

// SettlementPlan records the size of a computed settlement plan.
func (m *Metrics) SettlementPlan(transfers int) {
	if m == nil {
		return
	}
	m.settlementSteps.Observe(float64(transfers))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
