package status

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	"github.com/xiaoshi2013/warden/internal/metrics"
	wardentest "github.com/xiaoshi2013/warden/testing"
	"github.com/xiaoshi2013/warden/types"
)

type countingMetrics struct {
	*metrics.NopMetrics
	ok     atomic.Int32
	failed atomic.Int32
}

func (m *countingMetrics) RecordStatusPublish(success bool) {
	if success {
		m.ok.Add(1)
	} else {
		m.failed.Add(1)
	}
}

func fixedReport(nodeID string, counter *atomic.Int32) ReportFunc {
	return func() types.Status {
		counter.Add(1)
		return types.Status{NodeID: nodeID, RunState: types.RunStateStarted.String(), UpdatedAt: time.Now()}
	}
}

func TestPublisher_StartPublishesImmediately(t *testing.T) {
	_, nc := wardentest.StartEmbeddedNATS(t)
	kv := wardentest.CreateJetStreamKV(t, nc, "status")

	var reports atomic.Int32
	m := &countingMetrics{NopMetrics: metrics.NewNop()}
	p := New(kv, "status", time.Hour, fixedReport("node-1", &reports), WithMetrics(m))

	require.NoError(t, p.Start(t.Context()))
	require.True(t, p.IsStarted())
	require.ErrorIs(t, p.Start(t.Context()), types.ErrPublisherAlreadyStarted)

	st, err := Read(t.Context(), kv, "status", "node-1")
	require.NoError(t, err)
	require.Equal(t, "node-1", st.NodeID)
	require.Equal(t, "Started", st.RunState)
	require.Equal(t, int32(1), m.ok.Load())

	require.NoError(t, p.Stop())
	require.False(t, p.IsStarted())

	_, err = kv.Get(t.Context(), Key("status", "node-1"))
	require.ErrorIs(t, err, jetstream.ErrKeyNotFound)
}

func TestPublisher_Periodic(t *testing.T) {
	_, nc := wardentest.StartEmbeddedNATS(t)
	kv := wardentest.CreateJetStreamKV(t, nc, "status")

	var reports atomic.Int32
	p := New(kv, "status", 50*time.Millisecond, fixedReport("node-1", &reports))
	require.NoError(t, p.Start(t.Context()))
	defer func() { _ = p.Stop() }()

	require.Eventually(t, func() bool { return reports.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)
}

func TestPublisher_PublishNowAndPinnedNode(t *testing.T) {
	_, nc := wardentest.StartEmbeddedNATS(t)
	kv := wardentest.CreateJetStreamKV(t, nc, "status")

	var reports atomic.Int32
	p := New(kv, "nodes", time.Hour, fixedReport("", &reports))

	require.ErrorIs(t, p.PublishNow(t.Context()), types.ErrNoNodeID)
	require.ErrorIs(t, p.Start(t.Context()), types.ErrNoNodeID)
	require.False(t, p.IsStarted())

	p.SetNodeID("pinned")
	require.Equal(t, "pinned", p.NodeID())
	require.NoError(t, p.PublishNow(t.Context()))

	st, err := Read(t.Context(), kv, "nodes", "pinned")
	require.NoError(t, err)
	require.Equal(t, "pinned", st.NodeID)
}

func TestPublisher_StopNotStarted(t *testing.T) {
	var reports atomic.Int32
	p := New(nil, "status", time.Second, fixedReport("n", &reports))
	require.ErrorIs(t, p.Stop(), types.ErrPublisherNotStarted)
}

func TestPublisher_FailedPublishRecordsMetric(t *testing.T) {
	_, nc := wardentest.StartEmbeddedNATS(t)
	kv := wardentest.CreateJetStreamKV(t, nc, "status")

	var reports atomic.Int32
	m := &countingMetrics{NopMetrics: metrics.NewNop()}
	p := New(kv, "status", time.Hour, fixedReport("node-1", &reports), WithMetrics(m), WithTimeout(200*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, p.PublishNow(ctx))
	require.Equal(t, int32(1), m.failed.Load())
}

func TestKey(t *testing.T) {
	require.Equal(t, "status.node-1", Key("status", "node-1"))
}
