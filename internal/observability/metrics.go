package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Buffer metrics
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	Occupancy         *prometheus.GaugeVec

	// Worker metrics
	WorkerItems        *prometheus.CounterVec
	WorkerRetries      *prometheus.CounterVec
	ValidationFailures prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boundedbuffer_operations_total",
				Help: "Total number of buffer operations by outcome",
			},
			[]string{"strategy", "operation", "outcome"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "boundedbuffer_operation_duration_seconds",
				Help:    "Time spent inside buffer operations, including waits",
				Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"strategy", "operation"},
		),
		Occupancy: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "boundedbuffer_occupancy",
				Help: "Number of elements in the buffer after the last operation",
			},
			[]string{"strategy"},
		),
		WorkerItems: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boundedbuffer_worker_items_total",
				Help: "Total number of items produced or consumed",
			},
			[]string{"role"},
		),
		WorkerRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boundedbuffer_worker_retries_total",
				Help: "Total number of failed non-blocking or timed attempts",
			},
			[]string{"role", "reason"},
		),
		ValidationFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "boundedbuffer_validation_failures_total",
				Help: "Total number of extracted items that failed validation",
			},
		),
	}
}

// IncWorkerItems increments the items counter for a worker role.
func (m *Metrics) IncWorkerItems(role string) {
	m.WorkerItems.WithLabelValues(role).Inc()
}

// IncWorkerRetries increments the retry counter for a worker role.
func (m *Metrics) IncWorkerRetries(role, reason string) {
	m.WorkerRetries.WithLabelValues(role, reason).Inc()
}

// IncValidationFailures increments the validation failure counter.
func (m *Metrics) IncValidationFailures() {
	m.ValidationFailures.Inc()
}
