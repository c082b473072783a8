package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRecorder receives the outcome of every service operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

// PrometheusMetricsRecorder publishes per-operation counters and latency
// histograms plus a gauge tracking the collection size.
type PrometheusMetricsRecorder struct {
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	animals    prometheus.Gauge
}

// NewPrometheusMetricsRecorder registers the service collectors on reg.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	r := &PrometheusMetricsRecorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zookeeper",
			Name:      "operations_total",
			Help:      "Service operations by name and result.",
		}, []string{"operation", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "zookeeper",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		animals: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "zookeeper",
			Name:      "animals",
			Help:      "Animals currently held in the store.",
		}),
	}
	for _, c := range []prometheus.Collector{r.operations, r.durations, r.animals} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Observe records a service operation outcome.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.operations.WithLabelValues(operation, status).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetAnimals updates the collection size gauge.
func (r *PrometheusMetricsRecorder) SetAnimals(n int) {
	r.animals.Set(float64(n))
}

type sizeObserver interface {
	SetAnimals(n int)
}
