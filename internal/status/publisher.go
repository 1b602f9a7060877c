package status

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/xiaoshi2013/warden/internal/logging"
	"github.com/xiaoshi2013/warden/internal/metrics"
	"github.com/xiaoshi2013/warden/internal/natsutil"
	"github.com/xiaoshi2013/warden/types"
)

// ReportFunc returns the status to publish.
type ReportFunc func() types.Status

// Publisher periodically writes a status report to NATS KV.
type Publisher struct {
	kv       jetstream.KeyValue
	prefix   string
	interval time.Duration
	timeout  time.Duration
	report   ReportFunc
	metrics  types.StatusMetrics
	logger   types.Logger

	// publishMu serializes KV writes so revisions follow report order.
	publishMu sync.Mutex

	mu      sync.Mutex
	started bool
	nodeID  string
	stopCh  chan struct{}
	doneCh  chan struct{}
	ticker  *time.Ticker
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithMetrics sets the collector for publish outcomes.
func WithMetrics(m types.StatusMetrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithLogger sets the logger for background publish failures.
func WithLogger(l types.Logger) Option {
	return func(p *Publisher) {
		p.logger = l
	}
}

// WithTimeout bounds each KV operation. Default: 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// New creates a status publisher.
//
// The KV bucket should be configured with a TTL of ~3x the interval.
//
// Parameters:
//   - kv: Bucket for status entries
//   - prefix: Key prefix (e.g., "status")
//   - interval: Refresh interval
//   - report: Called for every publish; its NodeID names the key unless SetNodeID was used
//   - opts: Optional metrics, logger and timeout
//
// Returns:
//   - *Publisher: New publisher
//
// Example:
//
//	kv, _ := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{
//	    Bucket: "warden-status",
//	    TTL:    15 * time.Second,
//	}, 0)
//	pub := status.New(kv, "status", 5*time.Second, ctrl.Status)
func New(kv jetstream.KeyValue, prefix string, interval time.Duration, report ReportFunc, opts ...Option) *Publisher {
	p := &Publisher{
		kv:       kv,
		prefix:   prefix,
		interval: interval,
		timeout:  5 * time.Second,
		report:   report,
		metrics:  metrics.NewNop(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// SetNodeID pins the node ID used for the key.
//
// Parameters:
//   - nodeID: Node ID; empty falls back to the report's NodeID
func (p *Publisher) SetNodeID(nodeID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nodeID = nodeID
}

// NodeID returns the node ID the next publish will use.
func (p *Publisher) NodeID() string {
	p.mu.Lock()
	pinned := p.nodeID
	p.mu.Unlock()

	if pinned != "" {
		return pinned
	}

	return p.report().NodeID
}

// Start publishes the first report immediately, then every interval until Stop.
//
// Returns:
//   - error: ErrPublisherAlreadyStarted, ErrNoNodeID, or the first publish error
func (p *Publisher) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return types.ErrPublisherAlreadyStarted
	}

	if _, err := p.publish(ctx, p.nodeID); err != nil {
		return fmt.Errorf("failed to publish initial status: %w", err)
	}

	p.started = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.ticker = time.NewTicker(p.interval)

	go p.publishLoop(p.ticker, p.stopCh, p.doneCh)

	return nil
}

// PublishNow writes the current report outside the regular interval.
//
// Returns:
//   - error: ErrNoNodeID or transport error
func (p *Publisher) PublishNow(ctx context.Context) error {
	p.mu.Lock()
	nodeID := p.nodeID
	p.mu.Unlock()

	_, err := p.publish(ctx, nodeID)

	return err
}

// Stop stops publishing and deletes the node's entry.
//
// Blocks until the background goroutine exits.
//
// Returns:
//   - error: ErrPublisherNotStarted, or the delete error
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return types.ErrPublisherNotStarted
	}

	p.ticker.Stop()
	close(p.stopCh)
	p.started = false
	doneCh := p.doneCh
	nodeID := p.nodeID
	p.mu.Unlock()

	<-doneCh

	if nodeID == "" {
		nodeID = p.report().NodeID
	}
	if nodeID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.kv.Delete(ctx, Key(p.prefix, nodeID)); err != nil && !natsutil.IsNotFound(err) {
		return fmt.Errorf("stopped but failed to delete status: %w", err)
	}

	return nil
}

// IsStarted reports whether the publisher is running.
func (p *Publisher) IsStarted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.started
}

func (p *Publisher) publishLoop(ticker *time.Ticker, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			p.mu.Lock()
			nodeID := p.nodeID
			p.mu.Unlock()

			ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
			_, err := p.publish(ctx, nodeID)
			cancel()

			if err != nil {
				p.logger.Warn("status publish failed", "error", err)
			}
		}
	}
}

// publish writes one report. pinned overrides the report's node ID when set.
func (p *Publisher) publish(ctx context.Context, pinned string) (uint64, error) {
	st := p.report()
	if pinned != "" {
		st.NodeID = pinned
	}
	if st.NodeID == "" {
		return 0, types.ErrNoNodeID
	}

	data, err := json.Marshal(st)
	if err != nil {
		return 0, fmt.Errorf("encode status: %w", err)
	}

	p.publishMu.Lock()
	rev, err := p.kv.Put(ctx, Key(p.prefix, st.NodeID), data)
	p.publishMu.Unlock()

	p.metrics.RecordStatusPublish(err == nil)
	if err != nil {
		return 0, fmt.Errorf("failed to publish status for %s: %w", st.NodeID, err)
	}

	return rev, nil
}

// Key returns the KV key of a node's status entry.
func Key(prefix, nodeID string) string {
	return fmt.Sprintf("%s.%s", prefix, nodeID)
}

// Read loads and decodes a node's status entry.
//
// Returns:
//   - types.Status: Decoded status
//   - error: jetstream.ErrKeyNotFound when the node has no entry, or decode error
func Read(ctx context.Context, kv jetstream.KeyValue, prefix, nodeID string) (types.Status, error) {
	entry, err := kv.Get(ctx, Key(prefix, nodeID))
	if err != nil {
		return types.Status{}, err
	}

	var st types.Status
	if err := json.Unmarshal(entry.Value(), &st); err != nil {
		return types.Status{}, fmt.Errorf("decode status: %w", err)
	}

	return st, nil
}
