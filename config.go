package warden

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// OverridePolicy decides how an operator stop interacts with automatic starts.
type OverridePolicy string

const (
	// OverrideSticky suppresses every automatic start after a manual stop until
	// an explicit Start clears the override.
	OverrideSticky OverridePolicy = "sticky"

	// OverrideAdvisory lets a genuine change of the local shard set re-arm
	// automatic start. The start clears the override.
	OverrideAdvisory OverridePolicy = "advisory"
)

// String returns the policy name.
func (p OverridePolicy) String() string {
	return string(p)
}

// Valid reports whether p is a known policy.
func (p OverridePolicy) Valid() bool {
	return p == OverrideSticky || p == OverrideAdvisory
}

// StatusConfig controls publishing of node status to a NATS KV bucket.
type StatusConfig struct {
	// Enabled turns status publishing on. It also requires a NATS connection
	// (see WithNATS).
	Enabled bool `yaml:"enabled"`

	// Bucket is the KV bucket holding one status entry per node.
	Bucket string `yaml:"bucket"`

	// KeyPrefix is prepended to the node ID: "<prefix>.<nodeID>".
	KeyPrefix string `yaml:"keyPrefix"`

	// Interval is how often the status is republished.
	// Recommended: 5 seconds.
	Interval time.Duration `yaml:"interval"`

	// TTL is how long a status entry survives without being refreshed.
	// Must be at least 2x Interval. Recommended: 3x Interval.
	TTL time.Duration `yaml:"ttl"`
}

// SourceConfig locates encoded topology snapshots in NATS KV.
type SourceConfig struct {
	// Bucket is the KV bucket holding snapshots.
	Bucket string `yaml:"bucket"`

	// Key is the key the host writes each committed snapshot to.
	Key string `yaml:"key"`
}

// Config is the configuration of a Controller and its Runner.
//
// All duration fields accept standard Go duration strings like "30s", "5m", "1h".
type Config struct {
	// WatchIndex is the system index holding watch definitions. Its local
	// shard copies decide where the service runs.
	WatchIndex string `yaml:"watchIndex"`

	// TriggeredWatchIndex is the system index holding triggered work. Only its
	// format version is checked. Empty disables the check for it.
	TriggeredWatchIndex string `yaml:"triggeredWatchIndex"`

	// MinIndexFormat is the lowest supported index format version. An index
	// with an unset format version counts as format 0.
	MinIndexFormat int `yaml:"minIndexFormat"`

	// OverridePolicy selects how a manual stop affects automatic starts.
	OverridePolicy OverridePolicy `yaml:"overridePolicy"`

	// OperationTimeout bounds KV operations (get, put, delete).
	// Recommended: 10 seconds.
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// Status controls node status publishing.
	Status StatusConfig `yaml:"status"`

	// Source configures the NATS KV topology source.
	Source SourceConfig `yaml:"source"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		WatchIndex:          ".watches",
		TriggeredWatchIndex: ".triggered_watches",
		MinIndexFormat:      6,
		OverridePolicy:      OverrideSticky,
		OperationTimeout:    10 * time.Second,
		Status: StatusConfig{
			Enabled:   false,
			Bucket:    "warden-status",
			KeyPrefix: "status",
			Interval:  5 * time.Second,
			TTL:       15 * time.Second,
		},
		Source: SourceConfig{
			Bucket: "warden-topology",
			Key:    "snapshot",
		},
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// TriggeredWatchIndex and MinIndexFormat are left alone: empty and zero are
// meaningful values for them.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.WatchIndex == "" {
		cfg.WatchIndex = defaults.WatchIndex
	}
	if cfg.OverridePolicy == "" {
		cfg.OverridePolicy = defaults.OverridePolicy
	}
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}
	if cfg.Status.Bucket == "" {
		cfg.Status.Bucket = defaults.Status.Bucket
	}
	if cfg.Status.KeyPrefix == "" {
		cfg.Status.KeyPrefix = defaults.Status.KeyPrefix
	}
	if cfg.Status.Interval == 0 {
		cfg.Status.Interval = defaults.Status.Interval
	}
	if cfg.Status.TTL == 0 {
		cfg.Status.TTL = 3 * cfg.Status.Interval
	}
	if cfg.Source.Bucket == "" {
		cfg.Source.Bucket = defaults.Source.Bucket
	}
	if cfg.Source.Key == "" {
		cfg.Source.Key = defaults.Source.Key
	}
}

// Validate checks configuration constraints.
//
// Hard Validation Rules:
//   - WatchIndex is set
//   - TriggeredWatchIndex differs from WatchIndex
//   - MinIndexFormat >= 0
//   - OverridePolicy is sticky or advisory
//   - OperationTimeout > 0
//   - With status enabled: Interval > 0 and TTL >= 2 * Interval
//
// Returns:
//   - error: Error wrapping ErrInvalidConfig, nil if valid
func (cfg *Config) Validate() error {
	var errs []error

	if cfg.WatchIndex == "" {
		errs = append(errs, errors.New("watchIndex must be set"))
	}
	if cfg.TriggeredWatchIndex != "" && cfg.TriggeredWatchIndex == cfg.WatchIndex {
		errs = append(errs, fmt.Errorf("triggeredWatchIndex must differ from watchIndex (%q)", cfg.WatchIndex))
	}
	if cfg.MinIndexFormat < 0 {
		errs = append(errs, fmt.Errorf("minIndexFormat must be >= 0, got %d", cfg.MinIndexFormat))
	}
	if !cfg.OverridePolicy.Valid() {
		errs = append(errs, fmt.Errorf("unknown overridePolicy %q (want %q or %q)",
			cfg.OverridePolicy, OverrideSticky, OverrideAdvisory))
	}
	if cfg.OperationTimeout <= 0 {
		errs = append(errs, fmt.Errorf("operationTimeout must be > 0, got %v", cfg.OperationTimeout))
	}

	if cfg.Status.Enabled {
		if cfg.Status.Interval <= 0 {
			errs = append(errs, fmt.Errorf("status.interval must be > 0, got %v", cfg.Status.Interval))
		} else if cfg.Status.TTL < 2*cfg.Status.Interval {
			errs = append(errs, fmt.Errorf(
				"status.ttl (%v) must be >= 2*status.interval (%v) to allow one missed publish",
				cfg.Status.TTL, cfg.Status.Interval,
			))
		}
		if cfg.Status.Bucket == "" {
			errs = append(errs, errors.New("status.bucket must be set"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}

	return nil
}

// ValidateWithWarnings logs warnings for values that are valid but unusual.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.MinIndexFormat == 0 {
		logger.Warn("minIndexFormat is 0, the index format guard is disabled")
	}
	if cfg.TriggeredWatchIndex == "" {
		logger.Warn("triggeredWatchIndex is empty, its format will not be checked")
	}
	if cfg.Status.Enabled && cfg.Status.TTL < 3*cfg.Status.Interval {
		logger.Warn(
			"status TTL is below recommended minimum",
			"ttl", cfg.Status.TTL,
			"interval", cfg.Status.Interval,
			"recommended", 3*cfg.Status.Interval,
		)
	}
}

// TestConfig returns a configuration with fast timings for tests.
//
// Returns:
//   - Config: Configuration with fast timings for tests
//
// Example:
//
//	cfg := warden.TestConfig()
//	cfg.OverridePolicy = warden.OverrideAdvisory
//	ctrl, err := warden.NewController(&cfg, svc, src)
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.OperationTimeout = 2 * time.Second
	cfg.Status.Interval = 100 * time.Millisecond
	cfg.Status.TTL = 1 * time.Second

	return cfg
}

// LoadConfig reads a YAML configuration file over DefaultConfig.
//
// The result is not validated; NewController validates it.
//
// Parameters:
//   - path: Path of the YAML file
//
// Returns:
//   - Config: Parsed configuration with defaults applied
//   - error: Read or parse error
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	return ParseConfig(data)
}

// ParseConfig decodes YAML configuration over DefaultConfig.
//
// Fields absent from data keep their default value. Unknown fields are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	SetDefaults(&cfg)

	return cfg, nil
}
