package testing

import (
	"maps"

	"github.com/xiaoshi2013/warden/types"
)

// SnapshotBuilder assembles topology snapshots for tests.
//
// Every With* method returns the builder; Build returns an independent copy
// so one builder can produce a sequence of snapshots.
type SnapshotBuilder struct {
	snap types.TopologySnapshot
}

// NewSnapshot starts a snapshot taken on localNode at version 1.
// The local node is not added to the roster; use WithDataNode or WithNode.
func NewSnapshot(localNode string) *SnapshotBuilder {
	return &SnapshotBuilder{snap: types.TopologySnapshot{
		Version:      1,
		LocalNodeID:  localNode,
		MasterNodeID: localNode,
		Nodes:        map[string]types.Node{},
		Routing:      map[string][]types.ShardCopy{},
		Indices:      map[string]types.IndexSettings{},
	}}
}

// WithVersion sets the snapshot version.
func (b *SnapshotBuilder) WithVersion(v int64) *SnapshotBuilder {
	b.snap.Version = v
	return b
}

// WithMaster sets the elected master node.
func (b *SnapshotBuilder) WithMaster(id string) *SnapshotBuilder {
	b.snap.MasterNodeID = id
	return b
}

// WithNode adds a node with the given roles to the roster.
func (b *SnapshotBuilder) WithNode(id string, roles ...types.NodeRole) *SnapshotBuilder {
	b.snap.Nodes[id] = types.Node{ID: id, Roles: roles}
	return b
}

// WithDataNode adds a node carrying the master and data roles.
func (b *SnapshotBuilder) WithDataNode(id string) *SnapshotBuilder {
	return b.WithNode(id, types.RoleMaster, types.RoleData)
}

// WithIndex adds index metadata with one shard and the given format version.
func (b *SnapshotBuilder) WithIndex(name string, formatVersion int) *SnapshotBuilder {
	b.snap.Indices[name] = types.IndexSettings{Shards: 1, FormatVersion: formatVersion}
	return b
}

// WithIndexSettings adds index metadata.
func (b *SnapshotBuilder) WithIndexSettings(name string, settings types.IndexSettings) *SnapshotBuilder {
	b.snap.Indices[name] = settings
	return b
}

// WithShard adds a STARTED copy of index/shard on node.
func (b *SnapshotBuilder) WithShard(index string, shard int, node string, primary bool) *SnapshotBuilder {
	return b.WithCopy(types.ShardCopy{
		Index:   index,
		Shard:   shard,
		NodeID:  node,
		Primary: primary,
		State:   types.CopyStarted,
	})
}

// WithCopy adds an arbitrary shard copy to the routing table.
func (b *SnapshotBuilder) WithCopy(c types.ShardCopy) *SnapshotBuilder {
	b.snap.Routing[c.Index] = append(b.snap.Routing[c.Index], c)
	return b
}

// WithBlock adds a global block.
func (b *SnapshotBuilder) WithBlock(kind types.BlockKind) *SnapshotBuilder {
	b.snap.Blocks = append(b.snap.Blocks, kind)
	return b
}

// Build returns a copy of the assembled snapshot.
func (b *SnapshotBuilder) Build() *types.TopologySnapshot {
	out := b.snap
	out.Nodes = maps.Clone(b.snap.Nodes)
	out.Indices = maps.Clone(b.snap.Indices)
	out.Blocks = append([]types.BlockKind(nil), b.snap.Blocks...)
	out.Routing = make(map[string][]types.ShardCopy, len(b.snap.Routing))
	for index, copies := range b.snap.Routing {
		out.Routing[index] = append([]types.ShardCopy(nil), copies...)
	}

	return &out
}
