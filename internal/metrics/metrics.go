// Package metrics declares the Prometheus collectors of the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP API
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movienight_http_request_duration_seconds",
			Help:    "Duration of HTTP API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movienight_http_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"method", "route", "status"},
	)

	// gRPC API
	GRPCRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movienight_grpc_requests_total",
			Help: "Total number of gRPC requests",
		},
		[]string{"method", "code"},
	)

	// Domain
	AuthFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movienight_auth_failures_total",
			Help: "Failed logins and rejected session tokens",
		},
		[]string{"reason"}, // "login", "token"
	)

	PairsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "movienight_pairs_created_total",
			Help: "Total number of pairs created",
		},
	)

	RatingsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movienight_ratings_recorded_total",
			Help: "Total number of ratings appended to the ledger",
		},
		[]string{"rating"},
	)

	// Movie provider circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "movienight_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movienight_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)
)

// RecordHTTPRequest records one finished HTTP request.
func RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// RecordRating counts one appended rating.
func RecordRating(rating int) {
	RatingsRecorded.WithLabelValues(strconv.Itoa(rating)).Inc()
}
