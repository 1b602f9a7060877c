package types

import "context"

// SnapshotProvider returns the most recent snapshot known to the host.
type SnapshotProvider interface {
	// Latest returns the latest committed snapshot, or nil if none is known yet.
	Latest() *TopologySnapshot
}

// TopologyListener consumes snapshot changes.
//
// The host guarantees that ClusterChanged is never invoked concurrently with
// itself; calls arrive in commit order.
type TopologyListener interface {
	// ClusterChanged reconciles one (previous, current) pair.
	//
	// Parameters:
	//   - ctx: Context of the delivery
	//   - previous: Snapshot before the change (nil on the first delivery)
	//   - current: Snapshot after the change
	//
	// Returns:
	//   - error: Collaborator failure, reported back to the host
	ClusterChanged(ctx context.Context, previous, current *TopologySnapshot) error
}

// TopologySource delivers committed snapshot changes to a single listener.
//
// Implementations can be backed by:
//   - An in-memory host (see source.Memory)
//   - A NATS JetStream KV key holding encoded snapshots (see source.KV)
//   - Any cluster coordination layer able to emit ordered changes
type TopologySource interface {
	SnapshotProvider

	// Run delivers changes to listener until ctx is cancelled or the source closes.
	//
	// Only one listener may be registered for the lifetime of a source; a second
	// call returns ErrListenerRegistered. Deliveries are serialized.
	//
	// Parameters:
	//   - ctx: Context controlling the delivery loop
	//   - listener: Receiver of (previous, current) pairs
	//
	// Returns:
	//   - error: Registration or transport error; nil when ctx ends the loop
	Run(ctx context.Context, listener TopologyListener) error
}
