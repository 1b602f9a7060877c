package types

// RunState is the run state reported by the controlled service.
//
// The controller never stores this value; it reads it from the service before
// every decision:
//
//	RunStateStopped → RunStateStarted → RunStateStopping → RunStateStopped
type RunState int

const (
	// RunStateStopped indicates the service is not running.
	RunStateStopped RunState = iota

	// RunStateStarted indicates the service is running (possibly paused).
	RunStateStarted

	// RunStateStopping indicates a stop is in progress. The controller takes no
	// action until the service reports RunStateStopped.
	RunStateStopping
)

// String returns the string representation of the run state.
func (s RunState) String() string {
	switch s {
	case RunStateStopped:
		return "Stopped"
	case RunStateStarted:
		return "Started"
	case RunStateStopping:
		return "Stopping"
	default:
		return "Unknown"
	}
}
