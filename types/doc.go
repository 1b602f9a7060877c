// Package types provides core type definitions and interfaces for the warden library.
//
// This package contains shared types that are used across multiple packages in the
// module. Keeping them separate avoids import cycles between the root warden package
// and its internal implementations.
//
// Key types:
//   - TopologySnapshot: Immutable view of cluster membership, routing and metadata
//   - ShardCopy: One physical copy of an index shard hosted on a node
//   - RunState: Run state reported by the controlled service
//   - Decision: Outcome of a reconciliation pass or manual request
//   - ControlledService: Control plane of the subsystem being driven
//   - TopologySource: Host-side delivery of snapshot changes
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
