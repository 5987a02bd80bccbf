// Package metrics exposes Prometheus instrumentation for classification
// requests, remote fallbacks and the HTTP surface.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClassificationsTotal counts finished classifications by backend and outcome.
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recycling_classifications_total",
			Help: "Total number of classification calls",
		},
		[]string{"backend", "outcome"},
	)

	// ClassificationDuration includes simulated or remote latency.
	ClassificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recycling_classification_duration_seconds",
			Help:    "Duration of classification calls in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 2.5, 5, 10},
		},
		[]string{"backend"},
	)

	// AlternativesOffered counts results that carried low-confidence alternatives.
	AlternativesOffered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recycling_alternatives_offered_total",
			Help: "Total number of results that offered alternative classifications",
		},
		[]string{"backend"},
	)

	// FallbacksTotal counts remote failures masked by the local classifier.
	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recycling_remote_fallbacks_total",
			Help: "Total number of remote classification failures answered locally",
		},
		[]string{"reason"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recycling_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recycling_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recycling_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recycling_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recycling_http_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

// RecordClassification records one finished classification
func RecordClassification(backend, outcome string, duration time.Duration, withAlternatives bool) {
	ClassificationsTotal.WithLabelValues(backend, outcome).Inc()
	ClassificationDuration.WithLabelValues(backend).Observe(duration.Seconds())
	if withAlternatives {
		AlternativesOffered.WithLabelValues(backend).Inc()
	}
}

// RecordFallback records a remote failure that was answered locally
func RecordFallback(reason string) {
	FallbacksTotal.WithLabelValues(reason).Inc()
}

// RecordHTTPRequest records one HTTP request
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
