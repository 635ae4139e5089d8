package summary

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRecorder records one observation per pipeline call.
type MetricsRecorder interface {
	Observe(provider string, kind Kind, duration time.Duration)
}

// NoopMetrics discards observations.
type NoopMetrics struct{}

func (NoopMetrics) Observe(string, Kind, time.Duration) {}

// PrometheusMetrics records request counts and latencies per provider and outcome.
type PrometheusMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the summary collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "halo",
			Subsystem: "summary",
			Name:      "requests_total",
			Help:      "Summarization requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "halo",
			Subsystem: "summary",
			Name:      "duration_seconds",
			Help:      "Time spent producing a summary, including the provider call.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"provider", "outcome"}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) Observe(provider string, kind Kind, duration time.Duration) {
	outcome := string(kind)
	if kind == KindNone {
		outcome = "ok"
	}
	m.requests.WithLabelValues(provider, outcome).Inc()
	m.duration.WithLabelValues(provider, outcome).Observe(duration.Seconds())
}
