// Package source provides built-in topology source implementations.
//
// Topology sources deliver committed snapshot changes to one listener,
// usually a warden.Controller. The package includes:
//
//   - Memory: in-process host that applies snapshots handed to it
//   - KV: NATS JetStream KV key holding JSON encoded snapshots
//
// Custom sources can be implemented by satisfying the types.TopologySource interface.
package source
