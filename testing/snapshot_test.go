package testing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xiaoshi2013/warden/types"
)

func TestSnapshotBuilder(t *testing.T) {
	b := NewSnapshot("node-1").
		WithDataNode("node-1").
		WithNode("node-2", types.RoleMaster).
		WithIndex(".watches", 6).
		WithShard(".watches", 0, "node-1", true)

	first := b.Build()
	second := b.WithVersion(2).WithShard(".watches", 0, "node-2", false).Build()

	require.Equal(t, int64(1), first.Version)
	require.Len(t, first.Routing[".watches"], 1)
	require.Equal(t, int64(2), second.Version)
	require.Len(t, second.Routing[".watches"], 2)

	node, ok := first.LocalNode()
	require.True(t, ok)
	require.True(t, node.HasRole(types.RoleData))

	settings, ok := first.Index(".watches")
	require.True(t, ok)
	require.Equal(t, 6, settings.FormatVersion)

	blocked := NewSnapshot("n").WithBlock(types.BlockStateNotRecovered).Build()
	require.True(t, blocked.HasBlock(types.BlockStateNotRecovered))
}

func TestRecordingService(t *testing.T) {
	svc := NewRecordingService()
	require.Equal(t, types.RunStateStopped, svc.State())

	snap := NewSnapshot("n").Build()
	require.True(t, svc.Validate(snap))
	require.Equal(t, 1, svc.ValidateCalls())

	require.NoError(t, svc.Start(t.Context(), snap))
	require.Equal(t, types.RunStateStarted, svc.State())

	require.NoError(t, svc.Pause(t.Context(), "p"))
	require.Equal(t, types.RunStateStarted, svc.State())

	svc.FailWith(types.ActionStop, errAssert)
	require.ErrorIs(t, svc.Stop(t.Context(), "s"), errAssert)
	require.Equal(t, types.RunStateStarted, svc.State())

	svc.FailWith(types.ActionStop, nil)
	require.NoError(t, svc.Stop(t.Context(), "s"))
	require.Equal(t, types.RunStateStopped, svc.State())

	require.Equal(t, 2, svc.Count(types.ActionStop))
	require.Len(t, svc.Calls(), 4)

	svc.Reset()
	require.Empty(t, svc.Calls())
	require.Zero(t, svc.ValidateCalls())
}
