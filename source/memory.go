package source

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/xiaoshi2013/warden/types"
)

type change struct {
	previous *types.TopologySnapshot
	current  *types.TopologySnapshot
}

// Memory is an in-process topology source.
//
// The host calls Apply for every committed snapshot. Apply never blocks on the
// listener: changes are queued and delivered in order by Run, one at a time.
type Memory struct {
	opts options

	mu      sync.Mutex
	latest  *types.TopologySnapshot
	pending []change
	closed  bool

	notify     chan struct{}
	done       chan struct{}
	registered atomic.Bool
}

var _ types.TopologySource = (*Memory)(nil)

// NewMemory creates an empty in-memory source.
//
// Example:
//
//	src := source.NewMemory()
//	ctrl, _ := warden.NewController(&cfg, svc, src)
//	go src.Run(ctx, ctrl)
//	src.Apply(snapshot)
func NewMemory(opts ...Option) *Memory {
	return &Memory{
		opts:   applyOptions(opts),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Apply commits snapshot as the latest state and queues the change for delivery.
//
// Parameters:
//   - snapshot: Committed snapshot; must not be modified afterwards
//
// Returns:
//   - error: ErrNilSnapshot or ErrSourceClosed
func (m *Memory) Apply(snapshot *types.TopologySnapshot) error {
	if snapshot == nil {
		return types.ErrNilSnapshot
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return types.ErrSourceClosed
	}
	m.pending = append(m.pending, change{previous: m.latest, current: snapshot})
	m.latest = snapshot
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}

	return nil
}

// Latest returns the most recently applied snapshot, or nil.
func (m *Memory) Latest() *types.TopologySnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.latest
}

// Pending returns the number of changes not yet delivered.
func (m *Memory) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.pending)
}

// Run delivers queued changes to listener until ctx ends or Close is called.
//
// Listener errors are logged and passed to the error handler; delivery continues.
//
// Returns:
//   - error: ErrListenerRegistered on a second call, nil otherwise
func (m *Memory) Run(ctx context.Context, listener types.TopologyListener) error {
	if !m.registered.CompareAndSwap(false, true) {
		return types.ErrListenerRegistered
	}

	for {
		for _, ch := range m.drain() {
			if err := listener.ClusterChanged(ctx, ch.previous, ch.current); err != nil {
				m.opts.logger.Error("topology listener failed", "version", ch.current.Version, "error", err)
				m.opts.onError(err)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-m.done:
			return nil
		case <-m.notify:
		}
	}
}

func (m *Memory) drain() []change {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.pending
	m.pending = nil

	return out
}

// Close stops Run and rejects further snapshots. Undelivered changes are dropped.
func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	m.pending = nil
	close(m.done)
}
