package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xiaoshi2013/warden/types"
)

func TestNewNop(t *testing.T) {
	m := NewNop()

	require.NotNil(t, m)
	require.IsType(t, &NopMetrics{}, m)

	var _ types.MetricsCollector = m
}

func TestNopMetrics_NoPanics(t *testing.T) {
	m := NewNop()

	require.NotPanics(t, func() {
		m.RecordPass(types.ActionReload.String(), 0.002)
		m.RecordPass("", -1)
		m.RecordDecision(types.ActionPause.String(), types.ReasonNoLocalShards)
		m.RecordServiceError(types.ActionStart.String())
		m.SetTrackedShards(".watches", 3)
		m.SetManualOverride(true)
		m.RecordStatusPublish(false)
	})
}
