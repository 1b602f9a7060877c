package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xiaoshi2013/warden/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use so that building
// a collector never panics on duplicate registration until it is exercised.
type PrometheusCollector struct {
	*NopMetrics

	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	passes         *prometheus.CounterVec
	passDuration   prometheus.Histogram
	decisions      *prometheus.CounterVec
	serviceErrors  *prometheus.CounterVec
	trackedShards  *prometheus.GaugeVec
	manualOverride prometheus.Gauge
	statusPublish  *prometheus.CounterVec
}

var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Metrics namespace (defaults to "warden" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "warden"
	}

	return &PrometheusCollector{NopMetrics: NewNop(), reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.passes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "controller",
			Name:      "passes_total",
			Help:      "Total reconciliation passes by resulting action.",
		}, []string{"action"})

		p.passDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "controller",
			Name:      "pass_duration_seconds",
			Help:      "Duration of reconciliation passes in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs .. ~1.6s
		})

		p.decisions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "controller",
			Name:      "decisions_total",
			Help:      "Total decisions by action and reason.",
		}, []string{"action", "reason"})

		p.serviceErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "controller",
			Name:      "service_call_errors_total",
			Help:      "Total failed commands against the controlled service by action.",
		}, []string{"action"})

		p.trackedShards = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "controller",
			Name:      "tracked_shards",
			Help:      "Number of locally hosted shard copies tracked per system index.",
		}, []string{"index"})

		p.manualOverride = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "controller",
			Name:      "manual_override",
			Help:      "Manual override status (1=manually stopped, 0=automatic).",
		})

		p.statusPublish = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "status",
			Name:      "publish_total",
			Help:      "Total node status publish attempts by result (success,failure).",
		}, []string{"result"})

		p.reg.MustRegister(p.passes)
		p.reg.MustRegister(p.passDuration)
		p.reg.MustRegister(p.decisions)
		p.reg.MustRegister(p.serviceErrors)
		p.reg.MustRegister(p.trackedShards)
		p.reg.MustRegister(p.manualOverride)
		p.reg.MustRegister(p.statusPublish)
	})
}

// RecordPass counts a pass and observes its duration.
func (p *PrometheusCollector) RecordPass(action string, duration float64) {
	p.ensureRegistered()
	p.passes.WithLabelValues(action).Inc()
	p.passDuration.Observe(duration)
}

// RecordDecision counts a decision by action and reason.
func (p *PrometheusCollector) RecordDecision(action, reason string) {
	p.ensureRegistered()
	p.decisions.WithLabelValues(action, reason).Inc()
}

// RecordServiceError counts a failed service command.
func (p *PrometheusCollector) RecordServiceError(action string) {
	p.ensureRegistered()
	p.serviceErrors.WithLabelValues(action).Inc()
}

// SetTrackedShards sets the tracked shard gauge for an index.
func (p *PrometheusCollector) SetTrackedShards(index string, count int) {
	p.ensureRegistered()
	p.trackedShards.WithLabelValues(index).Set(float64(count))
}

// SetManualOverride sets the manual override gauge.
func (p *PrometheusCollector) SetManualOverride(active bool) {
	p.ensureRegistered()
	if active {
		p.manualOverride.Set(1)
	} else {
		p.manualOverride.Set(0)
	}
}

// RecordStatusPublish counts a status publish attempt.
func (p *PrometheusCollector) RecordStatusPublish(success bool) {
	p.ensureRegistered()
	result := "success"
	if !success {
		result = "failure"
	}
	p.statusPublish.WithLabelValues(result).Inc()
}
