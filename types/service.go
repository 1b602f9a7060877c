package types

import "context"

// ControlledService is the control plane of the subsystem driven by the controller.
//
// Commands are one-way triggers: implementations should dispatch the work and
// return promptly. The controller observes the effect through State() on the
// next pass and never waits for completion or retries.
//
// The controller never issues two commands concurrently.
type ControlledService interface {
	// State returns the current run state. Read before every decision.
	State() RunState

	// Validate reports whether the service can start against the snapshot.
	// Called only when a start is being attempted.
	Validate(snapshot *TopologySnapshot) bool

	// Start starts the service against the snapshot.
	Start(ctx context.Context, snapshot *TopologySnapshot) error

	// Stop stops the service.
	Stop(ctx context.Context, reason string) error

	// Pause suspends execution without stopping the service.
	Pause(ctx context.Context, reason string) error

	// Reload re-attaches a running service to the local shards of the snapshot.
	Reload(ctx context.Context, snapshot *TopologySnapshot, reason string) error
}
