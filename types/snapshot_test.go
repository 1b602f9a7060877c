package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShardCopy_CopyID(t *testing.T) {
	t.Run("derived from shard, node and state", func(t *testing.T) {
		c := ShardCopy{Index: ".watches", Shard: 1, NodeID: "node_1", Primary: true, State: CopyStarted}
		require.Equal(t, "1/node_1/STARTED", c.CopyID())
	})

	t.Run("relocation changes the derived id", func(t *testing.T) {
		started := ShardCopy{Shard: 0, NodeID: "node_1", State: CopyStarted}
		relocating := ShardCopy{Shard: 0, NodeID: "node_1", State: CopyRelocating}
		require.NotEqual(t, started.CopyID(), relocating.CopyID())
	})

	t.Run("allocation id wins", func(t *testing.T) {
		c := ShardCopy{Shard: 0, NodeID: "node_1", State: CopyStarted, AllocationID: "aid-7"}
		require.Equal(t, "aid-7", c.CopyID())
	})
}

func TestCopyState_Active(t *testing.T) {
	require.False(t, CopyInitializing.Active())
	require.True(t, CopyStarted.Active())
	require.True(t, CopyRelocating.Active())
}

func TestTopologySnapshot_Accessors(t *testing.T) {
	snap := &TopologySnapshot{
		LocalNodeID: "node_1",
		Nodes: map[string]Node{
			"node_1": {ID: "node_1", Roles: []NodeRole{RoleMaster, RoleData}},
		},
		Blocks: []BlockKind{BlockStateNotRecovered},
		Routing: map[string][]ShardCopy{
			".watches": {
				{Index: ".watches", Shard: 0, NodeID: "node_1", Primary: true, State: CopyStarted},
				{Index: ".watches", Shard: 0, NodeID: "node_2", State: CopyStarted},
				{Index: ".watches", Shard: 1, NodeID: "node_1", State: CopyInitializing},
			},
		},
		Indices: map[string]IndexSettings{".watches": {Shards: 2, Replicas: 1, FormatVersion: 6}},
	}

	require.True(t, snap.HasBlock(BlockStateNotRecovered))
	require.False(t, snap.HasBlock(BlockNoMaster))

	local, ok := snap.LocalNode()
	require.True(t, ok)
	require.True(t, local.HasRole(RoleData))
	require.False(t, local.HasRole(RoleIngest))

	settings, ok := snap.Index(".watches")
	require.True(t, ok)
	require.Equal(t, 6, settings.FormatVersion)

	_, ok = snap.Index(".triggered_watches")
	require.False(t, ok)

	require.Len(t, snap.ShardsOnNode(".watches", "node_1"), 2)
	require.Len(t, snap.ShardsOnNode(".watches", "node_3"), 0)
}

func TestTopologySnapshot_JSON(t *testing.T) {
	in := &TopologySnapshot{
		Version:     3,
		LocalNodeID: "node_1",
		Blocks:      []BlockKind{BlockNoMaster},
		Routing: map[string][]ShardCopy{
			".watches": {{Index: ".watches", Shard: 0, NodeID: "node_1", Primary: true, State: CopyRelocating}},
		},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	require.Contains(t, string(data), `"RELOCATING"`)
	require.Contains(t, string(data), `"no_master"`)

	var out TopologySnapshot
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, in.Blocks, out.Blocks)
	require.Equal(t, CopyRelocating, out.Routing[".watches"][0].State)

	var bad CopyState
	require.Error(t, bad.UnmarshalText([]byte("GONE")))
}
