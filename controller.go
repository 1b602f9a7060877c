package warden

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xiaoshi2013/warden/internal/allocation"
	"github.com/xiaoshi2013/warden/internal/fanout"
	"github.com/xiaoshi2013/warden/internal/hooks"
	"github.com/xiaoshi2013/warden/internal/logging"
	"github.com/xiaoshi2013/warden/internal/metrics"
	"github.com/xiaoshi2013/warden/internal/override"
	"github.com/xiaoshi2013/warden/types"
)

// Controller decides, for the node it runs on, whether the controlled service
// should run, pause, reload or stop.
//
// Controller is a TopologyListener: the host delivers every committed
// (previous, current) snapshot pair to ClusterChanged. Each pass issues at
// most one command to the service. Operators use Start and Stop; a manual stop
// sets an override that automatic starts respect according to the configured
// OverridePolicy.
//
// Thread Safety:
//   - ClusterChanged must not be called concurrently with itself
//   - Start, Stop, Close, Status and SubscribeDecisions are safe from any goroutine
//   - One mutex serializes passes and manual calls, including the service commands they issue
//
// Lifecycle:
//   - Create with NewController()
//   - Register with a TopologySource (see Runner) or call ClusterChanged directly
//   - Call Close() on shutdown
type Controller struct {
	cfg      Config
	service  ControlledService
	provider SnapshotProvider

	hooks   types.Hooks
	metrics MetricsCollector
	logger  Logger
	nodeID  string

	decisions *fanout.Broadcaster[Decision]

	// mu guards everything below and serializes service commands.
	mu           sync.Mutex
	tracker      *allocation.Tracker
	override     override.Flag
	closed       bool
	lastDecision *Decision
	localNodeID  string
}

var _ TopologyListener = (*Controller)(nil)

// NewController creates a controller for service.
//
// The config is defaulted and validated. provider is used by manual Start to
// fetch the latest snapshot; a TopologySource satisfies it.
//
// Parameters:
//   - cfg: Configuration (defaults are filled in place)
//   - service: The controlled service
//   - provider: Source of the latest snapshot
//   - opts: Optional logger, metrics, hooks
//
// Returns:
//   - *Controller: New controller
//   - error: ErrInvalidConfig, ErrServiceRequired or ErrSnapshotProviderRequired
//
// Example:
//
//	cfg := warden.DefaultConfig()
//	ctrl, err := warden.NewController(&cfg, watcher, src,
//	    warden.WithLogger(logging.NewSlogDefault()),
//	)
func NewController(cfg *Config, service ControlledService, provider SnapshotProvider, opts ...Option) (*Controller, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if service == nil {
		return nil, ErrServiceRequired
	}
	if provider == nil {
		return nil, ErrSnapshotProviderRequired
	}

	SetDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := applyOptions(opts)

	metricsCollector := o.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := o.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	cfg.ValidateWithWarnings(loggerInstance)

	return &Controller{
		cfg:       *cfg,
		service:   service,
		provider:  provider,
		hooks:     hooks.Fill(o.hooks),
		metrics:   metricsCollector,
		logger:    loggerInstance,
		nodeID:    o.nodeID,
		decisions: fanout.New[Decision](0),
		tracker:   allocation.NewTracker(),
	}, nil
}

// ClusterChanged reconciles one committed topology change.
//
// Abnormal but expected conditions (cluster not recovered, index format too
// old, validation failing, manual override, service stopping) end the pass
// without a command and without an error. A failing service command is
// returned wrapped; the tracked shard set is then left as it was so the next
// snapshot retries.
//
// Parameters:
//   - ctx: Context passed to the service command
//   - previous: Snapshot before the change (may be nil)
//   - current: Snapshot after the change
//
// Returns:
//   - error: ErrNilSnapshot or the wrapped service error
func (c *Controller) ClusterChanged(ctx context.Context, previous, current *TopologySnapshot) error {
	if current == nil {
		return ErrNilSnapshot
	}

	start := time.Now()

	c.mu.Lock()
	d, err := c.reconcileLocked(ctx, current)
	c.commitLocked(d, err)
	c.mu.Unlock()

	c.metrics.RecordPass(d.Action.String(), time.Since(start).Seconds())

	var prevVersion int64
	if previous != nil {
		prevVersion = previous.Version
	}
	c.logger.Debug("cluster change reconciled",
		"previous_version", prevVersion,
		"version", current.Version,
		"action", d.Action.String(),
		"reason", d.Reason,
	)

	c.finish(ctx, d, err)

	return err
}

// reconcileLocked runs one pass. Caller holds c.mu.
func (c *Controller) reconcileLocked(ctx context.Context, current *TopologySnapshot) (Decision, error) {
	c.localNodeID = current.LocalNodeID
	index := c.cfg.WatchIndex
	d := Decision{Index: index, Version: current.Version}

	if c.closed {
		d.Reason = types.ReasonClosed
		return d, nil
	}

	if current.HasBlock(types.BlockStateNotRecovered) {
		d.Reason = types.ReasonNotRecovered
		return d, nil
	}

	compatible := c.formatCompatible(current)

	if _, ok := current.Index(index); !ok {
		if c.tracker.Previous(index).Len() == 0 {
			c.tracker.Reset(index)
			d.Reason = types.ReasonIndexMissing
			return d, nil
		}

		d.Action, d.Reason = types.ActionPause, types.ReasonIndexMissing
		if err := c.issueLocked(ctx, d, current); err != nil {
			return d, err
		}
		c.tracker.Reset(index)
		c.metrics.SetTrackedShards(index, 0)

		return d, nil
	}

	next, hostable := allocation.Compute(current, index)
	if !hostable {
		d.Reason = types.ReasonNoRoutingNode
		return d, nil
	}

	change := c.tracker.Diff(index, next)
	d.Action, d.Reason = decide(passInput{
		state:            c.service.State(),
		kind:             change.Kind,
		overrideActive:   c.override.Active(),
		policy:           c.cfg.OverridePolicy,
		formatCompatible: compatible,
	})

	if d.Action == types.ActionStart && !c.service.Validate(current) {
		d.Action, d.Reason = types.ActionNone, types.ReasonNotValid
	}

	if err := c.issueLocked(ctx, d, current); err != nil {
		return d, err
	}

	if d.Action == types.ActionStart && c.override.Active() {
		c.logger.Info("local shard change re-armed automatic start",
			"override_reason", c.override.Reason(),
			"policy", c.cfg.OverridePolicy.String(),
		)
		c.override.Clear()
		c.metrics.SetManualOverride(false)
	}

	c.tracker.Record(index, next)
	c.metrics.SetTrackedShards(index, next.Len())

	return d, nil
}

// issueLocked sends the command of d to the service. Caller holds c.mu.
func (c *Controller) issueLocked(ctx context.Context, d Decision, snapshot *TopologySnapshot) error {
	var err error

	switch d.Action {
	case types.ActionNone:
		return nil
	case types.ActionPause:
		err = c.service.Pause(ctx, d.Reason)
	case types.ActionReload:
		err = c.service.Reload(ctx, snapshot, d.Reason)
	case types.ActionStart:
		err = c.service.Start(ctx, snapshot)
	case types.ActionStop:
		err = c.service.Stop(ctx, d.Reason)
	}

	if err != nil {
		return fmt.Errorf("%s service: %w", d.Action, err)
	}

	return nil
}

// formatCompatible reports whether every monitored index present in snapshot
// meets the minimum format version.
func (c *Controller) formatCompatible(snapshot *TopologySnapshot) bool {
	for _, name := range c.monitoredIndices() {
		settings, ok := snapshot.Index(name)
		if !ok {
			continue
		}
		if settings.FormatVersion < c.cfg.MinIndexFormat {
			c.logger.Warn("system index format too old",
				"index", name,
				"format", settings.FormatVersion,
				"min_format", c.cfg.MinIndexFormat,
			)

			return false
		}
	}

	return true
}

func (c *Controller) monitoredIndices() []string {
	if c.cfg.TriggeredWatchIndex == "" {
		return []string{c.cfg.WatchIndex}
	}

	return []string{c.cfg.WatchIndex, c.cfg.TriggeredWatchIndex}
}

// Start starts the service on operator request and clears the manual override.
//
// Nothing happens unless the service is STOPPED, a snapshot is available, the
// cluster has recovered, the system indices have a supported format and the
// service validates the snapshot. Those outcomes are reported through the
// returned Decision, not as errors.
//
// Parameters:
//   - ctx: Context passed to the service command
//
// Returns:
//   - Decision: What was done and why
//   - error: Wrapped service error
func (c *Controller) Start(ctx context.Context) (Decision, error) {
	c.mu.Lock()
	d, err := c.startLocked(ctx)
	c.commitLocked(d, err)
	c.mu.Unlock()

	c.finish(ctx, d, err)

	return d, err
}

func (c *Controller) startLocked(ctx context.Context) (Decision, error) {
	d := Decision{Index: c.cfg.WatchIndex, Manual: true}

	if c.closed {
		d.Reason = types.ReasonClosed
		return d, nil
	}

	if c.service.State() != types.RunStateStopped {
		d.Reason = types.ReasonServiceNotStopped
		return d, nil
	}

	snapshot := c.provider.Latest()
	if snapshot == nil {
		d.Reason = types.ReasonNoSnapshot
		return d, nil
	}
	d.Version = snapshot.Version
	c.localNodeID = snapshot.LocalNodeID

	switch {
	case snapshot.HasBlock(types.BlockStateNotRecovered):
		d.Reason = types.ReasonNotRecovered
		return d, nil
	case !c.formatCompatible(snapshot):
		d.Reason = types.ReasonFormatTooOld
		return d, nil
	case !c.service.Validate(snapshot):
		d.Reason = types.ReasonNotValid
		return d, nil
	}

	d.Action, d.Reason = types.ActionStart, types.ReasonManualStart
	if err := c.issueLocked(ctx, d, snapshot); err != nil {
		return d, err
	}

	c.override.Clear()
	c.metrics.SetManualOverride(false)

	// Track what the service was started against so the next pass does not
	// mistake the current allocation for a change.
	if _, ok := snapshot.Index(c.cfg.WatchIndex); ok {
		if set, hostable := allocation.Compute(snapshot, c.cfg.WatchIndex); hostable {
			c.tracker.Record(c.cfg.WatchIndex, set)
			c.metrics.SetTrackedShards(c.cfg.WatchIndex, set.Len())
		}
	}

	return d, nil
}

// Stop stops the service on operator request and sets the manual override.
//
// Nothing happens while the service is STOPPING. The override is set once the
// stop command was accepted, even if the service was already stopped.
//
// Parameters:
//   - ctx: Context passed to the service command
//   - reason: Human readable reason, passed to the service and kept in the override
//
// Returns:
//   - Decision: What was done and why
//   - error: Wrapped service error
func (c *Controller) Stop(ctx context.Context, reason string) (Decision, error) {
	c.mu.Lock()
	d, err := c.stopLocked(ctx, reason)
	c.commitLocked(d, err)
	c.mu.Unlock()

	c.finish(ctx, d, err)

	return d, err
}

func (c *Controller) stopLocked(ctx context.Context, reason string) (Decision, error) {
	d := Decision{Index: c.cfg.WatchIndex, Manual: true}
	if latest := c.provider.Latest(); latest != nil {
		d.Version = latest.Version
	}

	if c.closed {
		d.Reason = types.ReasonClosed
		return d, nil
	}

	if c.service.State() == types.RunStateStopping {
		d.Reason = types.ReasonServiceStopping
		return d, nil
	}

	d.Action, d.Reason = types.ActionStop, reason
	if err := c.issueLocked(ctx, d, nil); err != nil {
		return d, err
	}

	c.override.Set(reason)
	c.metrics.SetManualOverride(true)

	return d, nil
}

// Close stops the service for shutdown and turns the controller off.
//
// The service is stopped with reason "shutdown initiated" unless it is already
// stopped or stopping. Every later pass and manual call is a no-op. Close also
// closes all decision subscriptions. Calling Close twice is safe.
//
// Parameters:
//   - ctx: Context passed to the service command
//
// Returns:
//   - error: Wrapped service error
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true

	d := Decision{Index: c.cfg.WatchIndex, Reason: types.ReasonShutdown}
	if c.service.State() == types.RunStateStarted {
		d.Action = types.ActionStop
	}
	err := c.issueLocked(ctx, d, nil)
	c.commitLocked(d, err)
	c.mu.Unlock()

	c.finish(ctx, d, err)
	c.decisions.Close()

	c.logger.Info("controller closed", "stopped_service", d.Action == types.ActionStop)

	return err
}

// commitLocked stores and broadcasts a successful decision. Caller holds c.mu,
// which keeps subscribers seeing decisions in the order they were made.
func (c *Controller) commitLocked(d Decision, err error) {
	if err != nil {
		return
	}

	c.lastDecision = &d
	c.decisions.Publish(d)
}

// finish records metrics, logs and runs hooks for the outcome of a pass or manual call.
func (c *Controller) finish(ctx context.Context, d Decision, err error) {
	c.metrics.RecordDecision(d.Action.String(), d.Reason)

	if err != nil {
		c.metrics.RecordServiceError(d.Action.String())
		c.logger.Error("service command failed",
			"action", d.Action.String(),
			"reason", d.Reason,
			"index", d.Index,
			"version", d.Version,
			"error", err,
		)
		go func() {
			if hookErr := c.hooks.OnError(context.WithoutCancel(ctx), err); hookErr != nil {
				c.logger.Error("error hook failed", "error", hookErr)
			}
		}()

		return
	}

	if d.IsNoop() {
		return
	}

	c.logger.Info("lifecycle decision",
		"action", d.Action.String(),
		"reason", d.Reason,
		"index", d.Index,
		"version", d.Version,
		"manual", d.Manual,
	)

	go func() {
		if hookErr := c.hooks.OnDecision(context.WithoutCancel(ctx), d); hookErr != nil {
			c.logger.Error("decision hook failed", "action", d.Action.String(), "error", hookErr)
		}
	}()
}

// SubscribeDecisions returns a channel receiving every decision, including
// passes that issued no command.
//
// The channel is buffered; a subscriber that falls behind misses decisions
// instead of blocking the controller.
//
// Returns:
//   - <-chan Decision: Decision stream, closed by Close or unsubscribe
//   - func(): Unsubscribe function
//
// Example:
//
//	ch, unsubscribe := ctrl.SubscribeDecisions()
//	defer unsubscribe()
//	for d := range ch {
//	    log.Printf("%s: %s", d.Action, d.Reason)
//	}
func (c *Controller) SubscribeDecisions() (<-chan Decision, func()) {
	return c.decisions.Subscribe()
}

// Status returns a point-in-time report of the controller.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		NodeID:         c.nodeID,
		RunState:       c.service.State().String(),
		ManualOverride: c.override.Active(),
		OverrideReason: c.override.Reason(),
		Closed:         c.closed,
		UpdatedAt:      time.Now(),
	}
	if st.NodeID == "" {
		st.NodeID = c.localNodeID
	}

	if indices := c.tracker.Indices(); len(indices) > 0 {
		st.Tracked = make(map[string]TrackedIndex, len(indices))
		for _, name := range indices {
			set := c.tracker.Previous(name)
			st.Tracked[name] = TrackedIndex{CopyIDs: set.IDs(), Fingerprint: set.Fingerprint()}
		}
	}

	if c.lastDecision != nil {
		last := *c.lastDecision
		st.LastDecision = &last
	}

	return st
}

// Config returns a copy of the effective configuration.
func (c *Controller) Config() Config {
	return c.cfg
}
