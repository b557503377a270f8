package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP метрики
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests in flight",
		},
	)
	HTTPRateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "http_requests_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter",
		},
	)

	// Операции над пользователями
	UserOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_operations_total",
			Help: "User store operations by outcome",
		},
		[]string{"operation", "result"},
	)
	UserEventsPublishFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_events_publish_failures_total",
			Help: "Change events that could not be published",
		},
		[]string{"type"},
	)
)

var initOnce sync.Once

// InitMetrics регистрирует метрики в глобальном реестре. Go и process коллекторы там уже есть.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(HTTPRequestsInFlight)
		prometheus.MustRegister(HTTPRateLimited)

		prometheus.MustRegister(UserOperationsTotal)
		prometheus.MustRegister(UserEventsPublishFailures)
	})
}
