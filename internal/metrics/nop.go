// Package metrics provides types.MetricsCollector implementations.
package metrics

import "github.com/xiaoshi2013/warden/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. It is the default collector and the embedded
// base of PrometheusCollector.
type NopMetrics struct{}

var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordPass discards the pass metric.
func (n *NopMetrics) RecordPass(_ /* action */ string, _ /* duration */ float64) {}

// RecordDecision discards the decision metric.
func (n *NopMetrics) RecordDecision(_ /* action */, _ /* reason */ string) {}

// RecordServiceError discards the service error metric.
func (n *NopMetrics) RecordServiceError(_ /* action */ string) {}

// SetTrackedShards discards the tracked shard gauge.
func (n *NopMetrics) SetTrackedShards(_ /* index */ string, _ /* count */ int) {}

// SetManualOverride discards the manual override gauge.
func (n *NopMetrics) SetManualOverride(_ /* active */ bool) {}

// RecordStatusPublish discards the status publish metric.
func (n *NopMetrics) RecordStatusPublish(_ /* success */ bool) {}
