package fanout

import (
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

// defaultBuffer allows a few values to queue while a subscriber is busy.
const defaultBuffer = 4

// Broadcaster fans values out to registered subscribers.
//
// Publish never blocks: a subscriber whose buffer is full misses the value and
// the drop is counted. Broadcaster is safe for concurrent use.
type Broadcaster[T any] struct {
	subscribers      *xsync.Map[uint64, *subscriber[T]]
	nextSubscriberID atomic.Uint64
	dropped          atomic.Uint64
	buffer           int
	closed           atomic.Bool
}

// New creates a broadcaster whose subscriber channels hold buffer values.
// A non-positive buffer selects the default.
func New[T any](buffer int) *Broadcaster[T] {
	if buffer <= 0 {
		buffer = defaultBuffer
	}

	return &Broadcaster[T]{
		subscribers: xsync.NewMap[uint64, *subscriber[T]](),
		buffer:      buffer,
	}
}

// Subscribe registers a new subscriber.
//
// Returns:
//   - <-chan T: Receive-only channel of published values
//   - func(): Unsubscribe function; closes the channel, safe to call twice
func (b *Broadcaster[T]) Subscribe() (<-chan T, func()) {
	sub := &subscriber[T]{ch: make(chan T, b.buffer)}
	if b.closed.Load() {
		sub.close()
		return sub.ch, func() {}
	}

	id := b.nextSubscriberID.Add(1)
	b.subscribers.Store(id, sub)

	return sub.ch, func() {
		b.remove(id)
	}
}

// Publish sends v to every subscriber without blocking.
func (b *Broadcaster[T]) Publish(v T) {
	b.subscribers.Range(func(_ uint64, sub *subscriber[T]) bool {
		if !sub.trySend(v) {
			b.dropped.Add(1)
		}

		return true
	})
}

// Len returns the number of active subscribers.
func (b *Broadcaster[T]) Len() int {
	return b.subscribers.Size()
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (b *Broadcaster[T]) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes every subscriber channel. Later subscribers receive a closed channel.
func (b *Broadcaster[T]) Close() {
	b.closed.Store(true)
	b.subscribers.Range(func(id uint64, _ *subscriber[T]) bool {
		b.remove(id)
		return true
	})
}

func (b *Broadcaster[T]) remove(id uint64) {
	if sub, ok := b.subscribers.LoadAndDelete(id); ok {
		sub.close()
	}
}

type subscriber[T any] struct {
	ch     chan T
	mu     sync.Mutex
	closed bool
}

// trySend reports false when the value was not delivered.
func (s *subscriber[T]) trySend(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}

	select {
	case s.ch <- v:
		return true
	default:
		return false
	}
}

func (s *subscriber[T]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
