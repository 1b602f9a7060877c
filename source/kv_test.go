package source

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	wardentest "github.com/xiaoshi2013/warden/testing"
	"github.com/xiaoshi2013/warden/types"
)

func TestKV_RunDeliversPublishedSnapshots(t *testing.T) {
	_, nc := wardentest.StartEmbeddedNATS(t)
	kv := wardentest.CreateJetStreamKV(t, nc, "topology")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b := wardentest.NewSnapshot("master").
		WithDataNode("master").
		WithDataNode("node-2").
		WithIndex(".watches", 6).
		WithShard(".watches", 0, "node-2", true)

	_, err := PublishSnapshot(ctx, kv, "snapshot", b.WithVersion(1).Build())
	require.NoError(t, err)

	src := NewKV(kv, "snapshot", "node-2", WithLogger(wardentest.NewTestLogger(t)))
	listener := &recordingListener{}

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- src.Run(runCtx, listener) }()

	require.Eventually(t, func() bool { return listener.count() == 1 }, 5*time.Second, 20*time.Millisecond)

	first := listener.snapshot()[0]
	require.Nil(t, first.previous)
	require.Equal(t, "node-2", first.current.LocalNodeID)
	require.Len(t, first.current.ShardsOnNode(".watches", "node-2"), 1)

	// Stale version is skipped, newer versions are delivered with their predecessor.
	_, err = PublishSnapshot(ctx, kv, "snapshot", b.WithVersion(1).Build())
	require.NoError(t, err)
	_, err = PublishSnapshot(ctx, kv, "snapshot", b.WithVersion(2).Build())
	require.NoError(t, err)

	require.Eventually(t, func() bool { return listener.count() == 2 }, 5*time.Second, 20*time.Millisecond)
	second := listener.snapshot()[1]
	require.Equal(t, int64(1), second.previous.Version)
	require.Equal(t, int64(2), second.current.Version)
	require.Equal(t, int64(2), src.Latest().Version)

	stop()
	require.NoError(t, <-done)
}

func TestKV_SkipsUndecodableEntries(t *testing.T) {
	_, nc := wardentest.StartEmbeddedNATS(t)
	kv := wardentest.CreateJetStreamKV(t, nc, "topology")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	errs := make(chan error, 4)
	src := NewKV(kv, "snapshot", "node-1", WithErrorHandler(func(err error) { errs <- err }))
	listener := &recordingListener{}
	go func() { _ = src.Run(ctx, listener) }()

	_, err := kv.PutString(ctx, "snapshot", "not json")
	require.NoError(t, err)

	select {
	case err := <-errs:
		require.ErrorContains(t, err, "decode snapshot")
	case <-time.After(5 * time.Second):
		t.Fatal("decode error not reported")
	}

	_, err = PublishSnapshot(ctx, kv, "snapshot", wardentest.NewSnapshot("x").WithVersion(3).Build())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return listener.count() == 1 }, 5*time.Second, 20*time.Millisecond)
}

func TestKV_Load(t *testing.T) {
	_, nc := wardentest.StartEmbeddedNATS(t)
	kv := wardentest.CreateJetStreamKV(t, nc, "topology")
	ctx := t.Context()

	src := NewKV(kv, "snapshot", "node-1")

	snap, err := src.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, snap)
	require.Nil(t, src.Latest())

	_, err = PublishSnapshot(ctx, kv, "snapshot", wardentest.NewSnapshot("master").WithVersion(7).WithBlock(types.BlockStateNotRecovered).Build())
	require.NoError(t, err)

	snap, err = src.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(7), snap.Version)
	require.Equal(t, "node-1", snap.LocalNodeID)
	require.True(t, snap.HasBlock(types.BlockStateNotRecovered))
	require.Same(t, snap, src.Latest())
}

func TestKV_SingleListener(t *testing.T) {
	_, nc := wardentest.StartEmbeddedNATS(t)
	kv := wardentest.CreateJetStreamKV(t, nc, "topology")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := NewKV(kv, "snapshot", "node-1")
	go func() { _ = src.Run(ctx, &recordingListener{}) }()

	require.Eventually(t, src.registered.Load, time.Second, 10*time.Millisecond)
	require.ErrorIs(t, src.Run(ctx, &recordingListener{}), types.ErrListenerRegistered)
}

func TestPublishSnapshot_Nil(t *testing.T) {
	_, err := PublishSnapshot(context.Background(), nil, "k", nil)
	require.ErrorIs(t, err, types.ErrNilSnapshot)
}
