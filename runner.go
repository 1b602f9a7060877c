package warden

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/xiaoshi2013/warden/internal/kvutil"
	"github.com/xiaoshi2013/warden/internal/status"
	"github.com/xiaoshi2013/warden/types"
)

// Runner binds a TopologySource to a Controller.
//
// Runner registers the controller as the source's only listener and, when
// Config.Status.Enabled is set and a NATS connection is given, publishes the
// controller's Status to NATS KV on an interval and after every decision that
// issued a command.
//
// Lifecycle:
//   - Create with NewRunner()
//   - Call Start() to begin delivery
//   - Call Stop() to end delivery and close the controller
type Runner struct {
	ctrl    *Controller
	source  TopologySource
	cfg     Config
	conn    *nats.Conn
	logger  Logger
	metrics MetricsCollector
	nodeID  string

	mu        sync.Mutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	publisher *status.Publisher
	runErr    error
}

// NewRunner creates a runner for ctrl fed by source.
//
// Logger and metrics default to the controller's.
//
// Parameters:
//   - ctrl: Controller receiving changes
//   - source: Topology source
//   - opts: Optional NATS connection, node ID, logger, metrics
//
// Returns:
//   - *Runner: New runner
//   - error: ErrControllerRequired or ErrSourceRequired
//
// Example:
//
//	src := source.NewKV(kv, cfg.Source.Key, "node-1")
//	ctrl, _ := warden.NewController(&cfg, watcher, src)
//	runner, _ := warden.NewRunner(ctrl, src, warden.WithNATS(nc))
//	if err := runner.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer runner.Stop(context.Background())
func NewRunner(ctrl *Controller, source TopologySource, opts ...Option) (*Runner, error) {
	if ctrl == nil {
		return nil, ErrControllerRequired
	}
	if source == nil {
		return nil, ErrSourceRequired
	}

	o := applyOptions(opts)

	r := &Runner{
		ctrl:    ctrl,
		source:  source,
		cfg:     ctrl.Config(),
		conn:    o.conn,
		logger:  o.logger,
		metrics: o.metrics,
		nodeID:  o.nodeID,
	}
	if r.logger == nil {
		r.logger = ctrl.logger
	}
	if r.metrics == nil {
		r.metrics = ctrl.metrics
	}
	if r.nodeID == "" {
		r.nodeID = ctrl.nodeID
	}

	if r.cfg.Status.Enabled && r.conn == nil {
		r.logger.Warn("status publishing enabled but no NATS connection given, status will not be published")
	}

	return r, nil
}

// Start begins delivering topology changes to the controller.
//
// Returns once delivery is running; it does not wait for the first snapshot.
//
// Parameters:
//   - ctx: Context for startup (bucket creation, first status publish)
//
// Returns:
//   - error: ErrAlreadyStarted or status bucket error
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return ErrAlreadyStarted
	}

	if r.cfg.Status.Enabled && r.conn != nil {
		pub, err := r.newPublisher(ctx)
		if err != nil {
			return err
		}
		r.publisher = pub
		r.startPublisherLocked(ctx)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.runErr = nil

	decisions, unsubscribe := r.ctrl.SubscribeDecisions()

	r.wg.Add(2)
	go r.deliver(runCtx)
	go r.watchDecisions(runCtx, decisions, unsubscribe)

	r.logger.Info("runner started", "status_publishing", r.publisher != nil)

	return nil
}

// deliver runs the source until the runner stops.
func (r *Runner) deliver(ctx context.Context) {
	defer r.wg.Done()

	err := r.source.Run(ctx, r.ctrl)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}

	r.logger.Error("topology source stopped", "error", err)

	r.mu.Lock()
	r.runErr = err
	r.mu.Unlock()
}

// watchDecisions republishes status after every decision that issued a command.
// Any decision can start a publisher that was waiting for the node ID.
func (r *Runner) watchDecisions(ctx context.Context, decisions <-chan Decision, unsubscribe func()) {
	defer r.wg.Done()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-decisions:
			if !ok {
				return
			}
			r.publishStatus(ctx, !d.IsNoop())
		}
	}
}

func (r *Runner) publishStatus(ctx context.Context, now bool) {
	r.mu.Lock()
	pub := r.publisher
	if pub != nil && !pub.IsStarted() {
		// Start publishes immediately, no extra write needed.
		r.startPublisherLocked(ctx)
		r.mu.Unlock()

		return
	}
	r.mu.Unlock()

	if pub == nil || !now {
		return
	}

	pctx, cancel := context.WithTimeout(ctx, r.cfg.OperationTimeout)
	defer cancel()

	if err := pub.PublishNow(pctx); err != nil {
		r.logger.Warn("status publish after decision failed", "error", err)
	}
}

func (r *Runner) newPublisher(ctx context.Context) (*status.Publisher, error) {
	js, err := jetstream.New(r.conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kvCtx, cancel := context.WithTimeout(ctx, r.cfg.OperationTimeout)
	defer cancel()

	kv, err := kvutil.EnsureBucket(kvCtx, js, jetstream.KeyValueConfig{
		Bucket:      r.cfg.Status.Bucket,
		Description: "warden node status",
		TTL:         r.cfg.Status.TTL,
		History:     1,
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open status bucket: %w", err)
	}

	pub := status.New(kv, r.cfg.Status.KeyPrefix, r.cfg.Status.Interval, r.ctrl.Status,
		status.WithMetrics(r.metrics),
		status.WithLogger(r.logger),
		status.WithTimeout(r.cfg.OperationTimeout),
	)
	pub.SetNodeID(r.nodeID)

	return pub, nil
}

// startPublisherLocked starts the publisher once a node ID is known.
// Caller holds r.mu.
func (r *Runner) startPublisherLocked(ctx context.Context) {
	if r.publisher.IsStarted() {
		return
	}

	if r.nodeID == "" {
		if latest := r.source.Latest(); latest != nil && latest.LocalNodeID != "" {
			r.publisher.SetNodeID(latest.LocalNodeID)
		}
	}

	err := r.publisher.Start(ctx)
	switch {
	case err == nil:
		r.logger.Info("status publisher started", "node_id", r.publisher.NodeID())
	case errors.Is(err, types.ErrNoNodeID):
		r.logger.Debug("status publisher waiting for node ID")
	default:
		r.logger.Warn("status publisher failed to start", "error", err)
	}
}

// Stop ends delivery, stops status publishing and closes the controller.
//
// Closing the controller stops the service if it is running.
//
// Parameters:
//   - ctx: Context passed to the controller's shutdown stop command
//
// Returns:
//   - error: ErrNotStarted, or the controller's close error
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.cancel == nil {
		r.mu.Unlock()
		return ErrNotStarted
	}
	r.cancel()
	r.cancel = nil
	pub := r.publisher
	r.publisher = nil
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("waiting for runner goroutines: %w", ctx.Err())
	}

	if pub != nil && pub.IsStarted() {
		if err := pub.Stop(); err != nil {
			r.logger.Warn("failed to stop status publisher", "error", err)
		}
	}

	if err := r.ctrl.Close(ctx); err != nil {
		return fmt.Errorf("failed to close controller: %w", err)
	}

	r.logger.Info("runner stopped")

	return nil
}

// Err returns the error that stopped the topology source, if any.
func (r *Runner) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.runErr
}

// StatusEntry reads this node's published status. Intended for diagnostics.
//
// Returns:
//   - Status: Decoded status entry
//   - error: Error if publishing is disabled or the entry is missing
func (r *Runner) StatusEntry(ctx context.Context) (Status, error) {
	if r.conn == nil || !r.cfg.Status.Enabled {
		return Status{}, errors.New("status publishing disabled")
	}

	js, err := jetstream.New(r.conn)
	if err != nil {
		return Status{}, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kv, err := js.KeyValue(ctx, r.cfg.Status.Bucket)
	if err != nil {
		return Status{}, fmt.Errorf("failed to open status bucket: %w", err)
	}

	nodeID := r.nodeID
	if nodeID == "" {
		nodeID = r.ctrl.Status().NodeID
	}

	return status.Read(ctx, kv, r.cfg.Status.KeyPrefix, nodeID)
}
