package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request-level metadata for the API.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
	checkout *prometheus.CounterVec
}

// NewHTTPMetrics registers the API metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests served.",
	}, []string{"method", "route", "status"})
	checkout := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Checkout submissions by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, requests, checkout)
	return &HTTPMetrics{
		duration: duration,
		requests: requests,
		checkout: checkout,
	}
}

// ObserveRequest records one served request.
func (h *HTTPMetrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	if h == nil || h.duration == nil {
		return
	}
	labels := []string{normalizeLabel(method), normalizeLabel(route), normalizeLabel(status)}
	h.duration.WithLabelValues(labels...).Observe(elapsed.Seconds())
	h.requests.WithLabelValues(labels...).Inc()
}

// IncCheckout counts a checkout submission outcome (accepted/rejected/failed).
func (h *HTTPMetrics) IncCheckout(outcome string) {
	if h == nil || h.checkout == nil {
		return
	}
	h.checkout.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return value
}
