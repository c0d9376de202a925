package middleware

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resaleintel_http_requests_total",
		Help: "HTTP requests by method and status.",
	}, []string{"method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "resaleintel_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resaleintel_analyses_total",
		Help: "Analyses by kind and outcome.",
	}, []string{"kind", "outcome"})

	visionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resaleintel_vision_errors_total",
		Help: "Vision provider errors by reason.",
	}, []string{"reason"})
)

// IncAnalysis records one analysis outcome (kind: full|prospect|barcode).
func IncAnalysis(kind, outcome string) {
	analysesTotal.WithLabelValues(kind, outcome).Inc()
}

// IncVisionError records one provider error by mapped reason.
func IncVisionError(reason string) {
	visionErrors.WithLabelValues(reason).Inc()
}

// Metrics tracks request counts and latency.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		timer := prometheus.NewTimer(requestDuration.WithLabelValues(r.Method))
		defer timer.ObserveDuration()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(wrapped, r)

		requestsTotal.WithLabelValues(r.Method, strconv.Itoa(wrapped.statusCode)).Inc()
	})
}

// MetricsHandler serves the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
