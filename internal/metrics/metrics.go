package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for authdemo
type Metrics struct {
	// HTTP calls made to the auth API
	APIRequests        *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec

	// Auth operations as seen by the user
	AuthOperations *prometheus.CounterVec

	// Last health probe result (1 online, 0 offline)
	HealthUp   prometheus.Gauge
	HealthRuns *prometheus.CounterVec

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		APIRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authdemo_api_requests_total",
				Help: "Total number of requests sent to the auth API",
			},
			[]string{"operation", "status"},
		),
		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "authdemo_api_request_duration_seconds",
				Help:    "Auth API request duration in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"operation"},
		),
		AuthOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authdemo_auth_operations_total",
				Help: "Total number of auth operations by result",
			},
			[]string{"operation", "result"},
		),
		HealthUp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "authdemo_health_up",
				Help: "Whether the last health probe found the API online",
			},
		),
		HealthRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authdemo_health_probes_total",
				Help: "Total number of health probes by outcome",
			},
			[]string{"online"},
		),
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authdemo_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code"},
		),
	}
}

// RecordAPIRequest records one HTTP call. status is 0 when the request
// never got a response.
func (m *Metrics) RecordAPIRequest(operation string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.APIRequests.WithLabelValues(operation, label).Inc()
	m.APIRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordAuthOperation records the outcome of an auth operation.
func (m *Metrics) RecordAuthOperation(operation, result string) {
	m.AuthOperations.WithLabelValues(operation, result).Inc()
}

// RecordHealth records a health probe result.
func (m *Metrics) RecordHealth(online bool) {
	if online {
		m.HealthUp.Set(1)
	} else {
		m.HealthUp.Set(0)
	}
	m.HealthRuns.WithLabelValues(strconv.FormatBool(online)).Inc()
}

// RecordError records an error by code.
func (m *Metrics) RecordError(code string) {
	if code == "" {
		code = "unknown"
	}
	m.Errors.WithLabelValues(code).Inc()
}
