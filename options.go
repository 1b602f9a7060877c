package warden

import (
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/xiaoshi2013/warden/internal/metrics"
)

// Option configures a Controller or Runner with optional dependencies.
type Option func(*options)

// options holds optional configuration shared by Controller and Runner.
type options struct {
	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger
	conn    *nats.Conn
	nodeID  string
}

// WithHooks sets decision and error hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewController
//
// Example:
//
//	hooks := &warden.Hooks{
//	    OnDecision: func(ctx context.Context, d warden.Decision) error {
//	        log.Printf("watcher %s: %s", d.Action, d.Reason)
//	        return nil
//	    },
//	}
//	ctrl, err := warden.NewController(&cfg, svc, src, warden.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *options) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewController or NewRunner
//
// Example:
//
//	m := warden.NewPrometheusMetrics(prometheus.DefaultRegisterer, "warden")
//	ctrl, err := warden.NewController(&cfg, svc, src, warden.WithMetrics(m))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewController or NewRunner
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithNATS sets the NATS connection used by the Runner to publish node status.
//
// Status publishing also requires Config.Status.Enabled.
//
// Parameters:
//   - conn: Connected NATS client
//
// Returns:
//   - Option: Functional option for NewRunner
func WithNATS(conn *nats.Conn) Option {
	return func(o *options) {
		o.conn = conn
	}
}

// WithNodeID overrides the node ID reported in status. By default the local
// node ID of the latest snapshot is used.
func WithNodeID(id string) Option {
	return func(o *options) {
		o.nodeID = id
	}
}

// NewPrometheusMetrics creates a MetricsCollector backed by Prometheus.
//
// Metrics are registered on reg the first time one is recorded.
//
// Parameters:
//   - reg: Registerer (prometheus.DefaultRegisterer if nil)
//   - namespace: Metric namespace ("warden" if empty)
//
// Returns:
//   - MetricsCollector: Prometheus-backed collector
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) MetricsCollector {
	return metrics.NewPrometheus(reg, namespace)
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
