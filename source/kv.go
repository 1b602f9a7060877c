package source

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/xiaoshi2013/warden/internal/natsutil"
	"github.com/xiaoshi2013/warden/types"
)

// KV is a topology source backed by one NATS JetStream KV key.
//
// The host (typically the elected master) writes every committed snapshot to
// the key with PublishSnapshot. Each node watches the key and reconciles the
// changes against its own node ID. Entries whose version does not increase
// are ignored.
type KV struct {
	kv     jetstream.KeyValue
	key    string
	nodeID string
	opts   options

	mu     sync.RWMutex
	latest *types.TopologySnapshot

	// delivered is the last snapshot handed to the listener. Only Run touches it.
	delivered *types.TopologySnapshot

	registered atomic.Bool
}

var _ types.TopologySource = (*KV)(nil)

// NewKV creates a source watching key in kv.
//
// Parameters:
//   - kv: Bucket holding snapshots
//   - key: Key written by the host
//   - nodeID: Local node ID; replaces the LocalNodeID of every decoded snapshot
//   - opts: Optional logger and error handler
//
// Returns:
//   - *KV: New source
//
// Example:
//
//	kv, _ := js.KeyValue(ctx, "warden-topology")
//	src := source.NewKV(kv, "snapshot", "node-1")
//	go src.Run(ctx, ctrl)
func NewKV(kv jetstream.KeyValue, key, nodeID string, opts ...Option) *KV {
	return &KV{
		kv:     kv,
		key:    key,
		nodeID: nodeID,
		opts:   applyOptions(opts),
	}
}

// Latest returns the latest snapshot seen on the key, or nil.
func (s *KV) Latest() *types.TopologySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.latest
}

// Load reads the current value of the key and makes it the latest snapshot
// without delivering it. Useful before Run to serve manual requests early.
//
// Returns:
//   - *types.TopologySnapshot: Decoded snapshot, nil if the key does not exist
//   - error: Transport or decoding error
func (s *KV) Load(ctx context.Context) (*types.TopologySnapshot, error) {
	entry, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if natsutil.IsNotFound(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("get topology key %s: %w", s.key, err)
	}

	snap, err := s.decode(entry.Value())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil || snap.Version > s.latest.Version {
		s.latest = snap
	}

	return snap, nil
}

// Run watches the key and delivers changes to listener until ctx ends.
//
// The current value of the key is delivered first. Undecodable entries,
// deletions and stale versions are skipped. Listener errors are logged and
// passed to the error handler; delivery continues.
//
// Returns:
//   - error: ErrListenerRegistered, a watch error, ErrSourceClosed if the watcher
//     stopped unexpectedly, nil when ctx ends
func (s *KV) Run(ctx context.Context, listener types.TopologyListener) error {
	if !s.registered.CompareAndSwap(false, true) {
		return types.ErrListenerRegistered
	}

	watcher, err := s.kv.Watch(ctx, s.key)
	if err != nil {
		if natsutil.IsConnectivityError(err) {
			return fmt.Errorf("watch topology key %s: %w: %w", s.key, types.ErrConnectivity, err)
		}

		return fmt.Errorf("watch topology key %s: %w", s.key, err)
	}

	defer func() {
		if err := watcher.Stop(); err != nil {
			s.opts.logger.Debug("failed to stop topology watcher", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case entry, ok := <-watcher.Updates():
			if !ok {
				if ctx.Err() != nil {
					return nil
				}

				return types.ErrSourceClosed
			}
			// nil marks the end of the initial replay.
			if entry == nil {
				continue
			}
			s.deliver(ctx, listener, entry)
		}
	}
}

func (s *KV) deliver(ctx context.Context, listener types.TopologyListener, entry jetstream.KeyValueEntry) {
	if entry.Operation() != jetstream.KeyValuePut {
		s.opts.logger.Warn("topology key removed, keeping last snapshot", "key", s.key)
		return
	}

	snap, err := s.decode(entry.Value())
	if err != nil {
		s.opts.logger.Error("skipping undecodable snapshot", "revision", entry.Revision(), "error", err)
		s.opts.onError(err)

		return
	}

	previous := s.delivered
	if previous != nil && snap.Version <= previous.Version {
		s.opts.logger.Debug("skipping stale snapshot", "version", snap.Version, "delivered", previous.Version)
		return
	}
	s.delivered = snap

	s.mu.Lock()
	if s.latest == nil || snap.Version >= s.latest.Version {
		s.latest = snap
	}
	s.mu.Unlock()

	if err := listener.ClusterChanged(ctx, previous, snap); err != nil {
		s.opts.logger.Error("topology listener failed", "version", snap.Version, "error", err)
		s.opts.onError(err)
	}
}

func (s *KV) decode(data []byte) (*types.TopologySnapshot, error) {
	var snap types.TopologySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.nodeID != "" {
		snap.LocalNodeID = s.nodeID
	}

	return &snap, nil
}

// PublishSnapshot encodes snapshot as JSON and writes it to key.
//
// Parameters:
//   - ctx: Context for the put
//   - kv: Bucket holding snapshots
//   - key: Topology key
//   - snapshot: Snapshot to publish
//
// Returns:
//   - uint64: Revision of the written entry
//   - error: Encoding or transport error
func PublishSnapshot(ctx context.Context, kv jetstream.KeyValue, key string, snapshot *types.TopologySnapshot) (uint64, error) {
	if snapshot == nil {
		return 0, types.ErrNilSnapshot
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return 0, fmt.Errorf("encode snapshot: %w", err)
	}

	rev, err := kv.Put(ctx, key, data)
	if err != nil {
		return 0, fmt.Errorf("put topology key %s: %w", key, err)
	}

	return rev, nil
}
