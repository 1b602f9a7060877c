package types

import "fmt"

// Action is the single control-plane command chosen for a pass.
type Action int

const (
	// ActionNone means no command is issued.
	ActionNone Action = iota

	// ActionPause pauses execution while keeping the service started.
	ActionPause

	// ActionReload re-attaches a started service to a changed local shard set.
	ActionReload

	// ActionStart starts a stopped service.
	ActionStart

	// ActionStop stops the service.
	ActionStop
)

// String returns the string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionPause:
		return "pause"
	case ActionReload:
		return "reload"
	case ActionStart:
		return "start"
	case ActionStop:
		return "stop"
	default:
		return "unknown"
	}
}

// MarshalText encodes the action by name.
func (a Action) MarshalText() ([]byte, error) {
	if a < ActionNone || a > ActionStop {
		return nil, fmt.Errorf("unknown action %d", int(a))
	}

	return []byte(a.String()), nil
}

// UnmarshalText decodes an action from its name.
func (a *Action) UnmarshalText(text []byte) error {
	for candidate := ActionNone; candidate <= ActionStop; candidate++ {
		if candidate.String() == string(text) {
			*a = candidate
			return nil
		}
	}

	return fmt.Errorf("unknown action %q", string(text))
}

// Reasons attached to decisions. Command reasons are passed to the service;
// the remaining ones explain why a pass issued no command.
const (
	ReasonIndexMissing     = "no watcher index found"
	ReasonNoLocalShards    = "no local watcher shards"
	ReasonLocalShardsMoved = "new local watcher shard"
	ReasonShutdown         = "shutdown initiated"

	ReasonNotRecovered      = "cluster state not recovered"
	ReasonFormatTooOld      = "system index format too old"
	ReasonNotValid          = "cluster state not valid for start"
	ReasonManualOverride    = "manually stopped"
	ReasonServiceStopping   = "service is stopping"
	ReasonServiceNotStopped = "service is not stopped"
	ReasonUnchanged         = "local shards unchanged"
	ReasonNoRoutingNode     = "local node holds no shards"
	ReasonNoSnapshot        = "no cluster state available"
	ReasonClosed            = "controller closed"
	ReasonManualStart       = "manual start"
)

// Decision records what the controller decided and why.
type Decision struct {
	// Action is the command issued (ActionNone when nothing was called).
	Action Action `json:"action"`

	// Reason explains the action, or why no action was taken.
	Reason string `json:"reason"`

	// Index is the system index the decision was made for, if any.
	Index string `json:"index,omitempty"`

	// Version is the version of the snapshot the decision was evaluated against.
	Version int64 `json:"version"`

	// Manual is true for decisions made by an explicit Start/Stop request.
	Manual bool `json:"manual,omitempty"`
}

// IsNoop reports whether the decision issued no command.
func (d Decision) IsNoop() bool {
	return d.Action == ActionNone
}
