// Package status publishes controller status reports to a NATS JetStream KV bucket.
//
// Each node owns the key "<prefix>.<nodeID>". The entry is refreshed on an
// interval and deleted on Stop, so a bucket TTL of a few intervals exposes
// crashed nodes by the disappearance of their entry.
package status
