package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Outbound request metrics
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quill_api_requests_total",
			Help: "Total number of outbound API requests",
		},
		[]string{"method", "status"},
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quill_api_request_duration_seconds",
			Help:    "Outbound API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Token refresh metrics
	tokenRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quill_token_refresh_total",
			Help: "Total number of token refresh attempts",
		},
		[]string{"status"}, // status: success/failure
	)

	endpointFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_endpoint_fallback_total",
			Help: "Total number of requests retried against an alternate endpoint path",
		},
	)
)

func recordRequest(method string, status int, duration time.Duration) {
	apiRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	apiRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func recordRefresh(success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	tokenRefreshTotal.WithLabelValues(status).Inc()
}

func recordFallback() {
	endpointFallbackTotal.Inc()
}
