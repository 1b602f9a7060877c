package allocation

import (
	"slices"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/xiaoshi2013/warden/types"
)

// Set is a set of shard-copy identifiers.
type Set map[string]struct{}

// NewSet creates a set holding the given identifiers.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}

	return s
}

// Len returns the number of identifiers in the set. A nil set is empty.
func (s Set) Len() int {
	return len(s)
}

// Contains reports whether id is in the set.
func (s Set) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Equal reports whether both sets hold exactly the same identifiers.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if _, ok := other[id]; !ok {
			return false
		}
	}

	return true
}

// IDs returns the identifiers in sorted order.
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids
}

// Fingerprint returns a hash of the sorted identifiers.
//
// Equal sets always share a fingerprint, independent of insertion order and
// process. The empty set hashes to zero.
func (s Set) Fingerprint() uint64 {
	if len(s) == 0 {
		return 0
	}

	return xxh3.HashString(strings.Join(s.IDs(), "\x00"))
}

// Compute builds the local allocation set of index from snapshot.
//
// Only copies in STARTED or RELOCATING state on the snapshot's local node are
// included. A local node that is missing from the roster or does not carry the
// data role cannot host shards at all; hostable is false in that case and the
// returned set is empty.
//
// Parameters:
//   - snapshot: Topology snapshot to read
//   - index: System index name
//
// Returns:
//   - Set: Identifiers of active local copies (never nil)
//   - bool: false if the local node cannot host shards
func Compute(snapshot *types.TopologySnapshot, index string) (Set, bool) {
	set := Set{}
	if snapshot == nil {
		return set, false
	}

	node, ok := snapshot.LocalNode()
	if !ok || !node.HasRole(types.RoleData) {
		return set, false
	}

	for _, c := range snapshot.ShardsOnNode(index, node.ID) {
		if c.State.Active() {
			set[c.CopyID()] = struct{}{}
		}
	}

	return set, true
}
