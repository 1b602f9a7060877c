package warden

import (
	"github.com/xiaoshi2013/warden/internal/allocation"
	"github.com/xiaoshi2013/warden/types"
)

// passInput is everything an automatic decision depends on besides Validate.
type passInput struct {
	state            RunState
	kind             allocation.Kind
	overrideActive   bool
	policy           OverridePolicy
	formatCompatible bool
}

// decide maps a classified local shard transition to at most one command.
//
// ActionStart is only a candidate: the caller still has to call Validate.
//
//	transition  | STARTED | STOPPED                          | STOPPING
//	------------+---------+----------------------------------+---------
//	unchanged   | none    | none                             | none
//	lost all    | pause   | none                             | none
//	changed     | reload  | start (override, format guarded) | none
func decide(in passInput) (Action, string) {
	switch in.kind {
	case allocation.KindUnchanged:
		return types.ActionNone, types.ReasonUnchanged

	case allocation.KindLostAll:
		if in.state == types.RunStateStarted {
			return types.ActionPause, types.ReasonNoLocalShards
		}

		return types.ActionNone, types.ReasonNoLocalShards

	case allocation.KindChanged:
		switch in.state {
		case types.RunStateStarted:
			return types.ActionReload, types.ReasonLocalShardsMoved
		case types.RunStateStopping:
			return types.ActionNone, types.ReasonServiceStopping
		case types.RunStateStopped:
			if in.overrideActive && in.policy != OverrideAdvisory {
				return types.ActionNone, types.ReasonManualOverride
			}
			if !in.formatCompatible {
				return types.ActionNone, types.ReasonFormatTooOld
			}

			return types.ActionStart, types.ReasonLocalShardsMoved
		}
	}

	return types.ActionNone, types.ReasonUnchanged
}
