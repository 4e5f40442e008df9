package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects application metrics.
type Metrics interface {
	RecordRequest(ctx context.Context, labels RequestLabels)
	RecordAttempt(ctx context.Context, labels AttemptLabels)
	RecordUpstreamLatency(ctx context.Context, seconds float64, labels AttemptLabels)
}

// RequestLabels contains per-request metric dimensions.
type RequestLabels struct {
	Mode    string // "auto" or "pinned"
	Outcome string // "success", "fatal", "exhausted"
}

// AttemptLabels contains per-attempt metric dimensions.
type AttemptLabels struct {
	Provider string
	Protocol string
	Outcome  string // "success", "key_missing", "transport", "status", "decode"
}

// PrometheusMetrics is the Prometheus-backed Metrics implementation.
type PrometheusMetrics struct {
	requests *prometheus.CounterVec
	attempts *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) *PrometheusMetrics {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of chat requests by selection mode and outcome.",
			},
			[]string{"mode", "outcome"},
		),
		attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_attempts_total",
				Help:      "Total number of provider attempts by provider, protocol and outcome.",
			},
			[]string{"provider", "protocol", "outcome"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_duration_seconds",
				Help:      "Upstream call duration in seconds.",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"provider", "protocol"},
		),
	}
}

func (m *PrometheusMetrics) RecordRequest(_ context.Context, labels RequestLabels) {
	m.requests.WithLabelValues(labels.Mode, labels.Outcome).Inc()
}

func (m *PrometheusMetrics) RecordAttempt(_ context.Context, labels AttemptLabels) {
	m.attempts.WithLabelValues(labels.Provider, labels.Protocol, labels.Outcome).Inc()
}

func (m *PrometheusMetrics) RecordUpstreamLatency(_ context.Context, seconds float64, labels AttemptLabels) {
	m.latency.WithLabelValues(labels.Provider, labels.Protocol).Observe(seconds)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordRequest(context.Context, RequestLabels)                  {}
func (NopMetrics) RecordAttempt(context.Context, AttemptLabels)                  {}
func (NopMetrics) RecordUpstreamLatency(context.Context, float64, AttemptLabels) {}
