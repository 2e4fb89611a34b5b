package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   prometheus.CounterVec
	HTTPRequestDuration prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitExceededTotal prometheus.CounterVec

	// Domain metrics
	UserRegistrationsTotal prometheus.CounterVec
	LoginAttemptsTotal     prometheus.CounterVec
	ContactsCreatedTotal   prometheus.Counter
	EmailsSentTotal        prometheus.CounterVec
	UsersTotal             prometheus.Gauge

	// Error metrics
	ErrorsTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			RateLimitExceededTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Total number of rate limited requests",
				},
				[]string{"scope"},
			),
			UserRegistrationsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "user_registrations_total",
					Help: "Total number of user registrations",
				},
				[]string{"status"},
			),
			LoginAttemptsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "login_attempts_total",
					Help: "Total number of login attempts",
				},
				[]string{"status"},
			),
			ContactsCreatedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "contacts_created_total",
					Help: "Total number of contacts created",
				},
			),
			EmailsSentTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "emails_sent_total",
					Help: "Total number of transactional emails sent",
				},
				[]string{"kind", "status"},
			),
			UsersTotal: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "users_total",
					Help: "Number of registered users",
				},
			),
			ErrorsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Total number of errors by component",
				},
				[]string{"component"},
			),
		}
	})

	return instance
}

// Get returns the metrics instance, initializing it if needed
func Get() *Metrics {
	return Initialize()
}
