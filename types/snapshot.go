package types

import (
	"fmt"
	"slices"
)

// BlockKind identifies a cluster-wide block carried by a topology snapshot.
type BlockKind int

const (
	// BlockStateNotRecovered is present until the cluster has finished recovering
	// its persisted state. Nothing may be started while it is set.
	BlockStateNotRecovered BlockKind = iota + 1

	// BlockNoMaster is present while no master node is elected.
	BlockNoMaster

	// BlockReadOnly marks the cluster metadata as read-only.
	BlockReadOnly
)

var blockKindNames = map[BlockKind]string{
	BlockStateNotRecovered: "state_not_recovered",
	BlockNoMaster:          "no_master",
	BlockReadOnly:          "read_only",
}

// String returns the string representation of the block kind.
func (b BlockKind) String() string {
	if name, ok := blockKindNames[b]; ok {
		return name
	}

	return "unknown"
}

// MarshalText encodes the block kind by name.
func (b BlockKind) MarshalText() ([]byte, error) {
	name, ok := blockKindNames[b]
	if !ok {
		return nil, fmt.Errorf("unknown block kind %d", int(b))
	}

	return []byte(name), nil
}

// UnmarshalText decodes a block kind from its name.
func (b *BlockKind) UnmarshalText(text []byte) error {
	for kind, name := range blockKindNames {
		if name == string(text) {
			*b = kind
			return nil
		}
	}

	return fmt.Errorf("unknown block kind %q", string(text))
}

// CopyState is the routing state of a single shard copy.
type CopyState int

const (
	// CopyInitializing indicates the copy is still recovering and holds no usable data.
	CopyInitializing CopyState = iota

	// CopyStarted indicates the copy is active.
	CopyStarted

	// CopyRelocating indicates the copy is active and being moved to another node.
	CopyRelocating
)

var copyStateNames = map[CopyState]string{
	CopyInitializing: "INITIALIZING",
	CopyStarted:      "STARTED",
	CopyRelocating:   "RELOCATING",
}

// String returns the string representation of the copy state.
func (s CopyState) String() string {
	if name, ok := copyStateNames[s]; ok {
		return name
	}

	return "UNKNOWN"
}

// Active reports whether the copy holds usable data (STARTED or RELOCATING).
func (s CopyState) Active() bool {
	return s == CopyStarted || s == CopyRelocating
}

// MarshalText encodes the copy state by name.
func (s CopyState) MarshalText() ([]byte, error) {
	name, ok := copyStateNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown copy state %d", int(s))
	}

	return []byte(name), nil
}

// UnmarshalText decodes a copy state from its name.
func (s *CopyState) UnmarshalText(text []byte) error {
	for state, name := range copyStateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}

	return fmt.Errorf("unknown copy state %q", string(text))
}

// NodeRole is a capability advertised by a cluster node.
type NodeRole string

// Known node roles.
const (
	RoleMaster NodeRole = "master"
	RoleData   NodeRole = "data"
	RoleIngest NodeRole = "ingest"
)

// Node is a member of the cluster roster.
type Node struct {
	ID    string     `json:"id"`
	Roles []NodeRole `json:"roles,omitempty"`
}

// HasRole reports whether the node advertises the given role.
func (n Node) HasRole(role NodeRole) bool {
	return slices.Contains(n.Roles, role)
}

// ShardCopy is one physical copy (primary or replica) of an index shard.
//
// All copies sharing Index and Shard form the shard's replication group.
type ShardCopy struct {
	Index   string    `json:"index"`
	Shard   int       `json:"shard"`
	NodeID  string    `json:"node"`
	Primary bool      `json:"primary"`
	State   CopyState `json:"state"`

	// AllocationID is an optional opaque identifier that stays stable for the
	// lifetime of the copy. When empty, identity is derived from shard, node and state.
	AllocationID string `json:"allocationId,omitempty"`
}

// CopyID returns the identifier used to track this copy across snapshots.
//
// Returns:
//   - string: AllocationID if set, otherwise "shard/node/state"
func (c ShardCopy) CopyID() string {
	if c.AllocationID != "" {
		return c.AllocationID
	}

	return fmt.Sprintf("%d/%s/%s", c.Shard, c.NodeID, c.State)
}

// IndexSettings holds the metadata of an index relevant to lifecycle decisions.
type IndexSettings struct {
	Shards   int `json:"shards"`
	Replicas int `json:"replicas"`

	// FormatVersion is the on-disk schema format of the index. Zero means unset.
	FormatVersion int `json:"formatVersion,omitempty"`
}

// TopologySnapshot is an immutable view of the cluster at one point in time.
//
// Snapshots are produced and owned by the host. The controller only reads them;
// callers must not mutate a snapshot after handing it over.
type TopologySnapshot struct {
	// Version increases with every committed topology change.
	Version int64 `json:"version"`

	LocalNodeID  string `json:"localNode"`
	MasterNodeID string `json:"masterNode,omitempty"`

	Nodes   map[string]Node          `json:"nodes,omitempty"`
	Blocks  []BlockKind              `json:"blocks,omitempty"`
	Routing map[string][]ShardCopy   `json:"routing,omitempty"`
	Indices map[string]IndexSettings `json:"indices,omitempty"`
}

// HasBlock reports whether the snapshot carries the given global block.
func (s *TopologySnapshot) HasBlock(kind BlockKind) bool {
	return slices.Contains(s.Blocks, kind)
}

// LocalNode returns the roster entry of the node this snapshot was taken on.
//
// Returns:
//   - Node: Local node entry
//   - bool: false if the local node is not part of the roster
func (s *TopologySnapshot) LocalNode() (Node, bool) {
	n, ok := s.Nodes[s.LocalNodeID]
	return n, ok
}

// Index returns the settings of the named index.
//
// Returns:
//   - IndexSettings: Index metadata
//   - bool: false if the index has no metadata in this snapshot
func (s *TopologySnapshot) Index(name string) (IndexSettings, bool) {
	settings, ok := s.Indices[name]
	return settings, ok
}

// ShardsOnNode returns the copies of the named index hosted on nodeID, in routing order.
//
// Parameters:
//   - index: Index name
//   - nodeID: Hosting node
//
// Returns:
//   - []ShardCopy: Copies hosted on the node (nil if none)
func (s *TopologySnapshot) ShardsOnNode(index, nodeID string) []ShardCopy {
	var out []ShardCopy
	for _, c := range s.Routing[index] {
		if c.NodeID == nodeID {
			out = append(out, c)
		}
	}

	return out
}
