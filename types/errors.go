package types

import (
	"errors"
	"strings"
)

// Sentinel errors for the warden library.
//
// Known conditions use these sentinels so callers can match them with
// errors.Is. External errors are wrapped with fmt.Errorf("...: %w", err).
//
// Policy outcomes (cluster not recovered, validation failing, manual override,
// service stopping) are never errors; they surface as no-op decisions.

// Controller errors - returned by the public controller and runner API.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrServiceRequired is returned when the controlled service is nil.
	ErrServiceRequired = errors.New("controlled service is required")

	// ErrSnapshotProviderRequired is returned when the snapshot provider is nil.
	ErrSnapshotProviderRequired = errors.New("snapshot provider is required")

	// ErrControllerRequired is returned when a runner is built without a controller.
	ErrControllerRequired = errors.New("controller is required")

	// ErrSourceRequired is returned when a runner is built without a topology source.
	ErrSourceRequired = errors.New("topology source is required")

	// ErrNilSnapshot is returned when a pass is delivered without a current snapshot.
	ErrNilSnapshot = errors.New("current snapshot is nil")

	// ErrAlreadyStarted is returned when Start is called on a running runner.
	ErrAlreadyStarted = errors.New("runner already started")

	// ErrNotStarted is returned when Stop is called on a runner that is not running.
	ErrNotStarted = errors.New("runner not started")
)

// Source errors - returned by topology source implementations.
var (
	// ErrListenerRegistered is returned when a second listener is registered on a source.
	ErrListenerRegistered = errors.New("topology listener already registered")

	// ErrSourceClosed is returned when a closed source is used.
	ErrSourceClosed = errors.New("topology source closed")

	// ErrConnectivity indicates a NATS/KV connectivity issue.
	ErrConnectivity = errors.New("connectivity issue")
)

// Status errors - returned by the status publisher.
var (
	// ErrPublisherAlreadyStarted is returned when Start is called on a running publisher.
	ErrPublisherAlreadyStarted = errors.New("status publisher already started")

	// ErrPublisherNotStarted is returned when Stop is called before Start.
	ErrPublisherNotStarted = errors.New("status publisher not started")

	// ErrNoNodeID is returned when the publisher has no node ID to publish under.
	ErrNoNodeID = errors.New("node ID not set")
)

// IsNoKeysFoundError checks if an error indicates that no keys were found in NATS KV.
//
// Parameters:
//   - err: The error to check
//
// Returns:
//   - bool: true if the error indicates no keys were found
func IsNoKeysFoundError(err error) bool {
	if err == nil {
		return false
	}

	return strings.Contains(err.Error(), "no keys found")
}
