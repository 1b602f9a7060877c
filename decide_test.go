package warden

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xiaoshi2013/warden/internal/allocation"
	"github.com/xiaoshi2013/warden/types"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name       string
		in         passInput
		wantAction Action
		wantReason string
	}{
		{
			name:       "unchanged while started",
			in:         passInput{state: RunStateStarted, kind: allocation.KindUnchanged, formatCompatible: true},
			wantAction: ActionNone,
			wantReason: types.ReasonUnchanged,
		},
		{
			name:       "unchanged while stopped",
			in:         passInput{state: RunStateStopped, kind: allocation.KindUnchanged, formatCompatible: true},
			wantAction: ActionNone,
			wantReason: types.ReasonUnchanged,
		},
		{
			name:       "lost all while started pauses",
			in:         passInput{state: RunStateStarted, kind: allocation.KindLostAll, formatCompatible: true},
			wantAction: ActionPause,
			wantReason: types.ReasonNoLocalShards,
		},
		{
			name:       "lost all while stopped",
			in:         passInput{state: RunStateStopped, kind: allocation.KindLostAll, formatCompatible: true},
			wantAction: ActionNone,
			wantReason: types.ReasonNoLocalShards,
		},
		{
			name:       "lost all while stopping",
			in:         passInput{state: RunStateStopping, kind: allocation.KindLostAll},
			wantAction: ActionNone,
			wantReason: types.ReasonNoLocalShards,
		},
		{
			name:       "changed while started reloads",
			in:         passInput{state: RunStateStarted, kind: allocation.KindChanged, formatCompatible: true},
			wantAction: ActionReload,
			wantReason: types.ReasonLocalShardsMoved,
		},
		{
			name:       "changed while started ignores format and override",
			in:         passInput{state: RunStateStarted, kind: allocation.KindChanged, overrideActive: true},
			wantAction: ActionReload,
			wantReason: types.ReasonLocalShardsMoved,
		},
		{
			name:       "changed while stopping",
			in:         passInput{state: RunStateStopping, kind: allocation.KindChanged, formatCompatible: true},
			wantAction: ActionNone,
			wantReason: types.ReasonServiceStopping,
		},
		{
			name:       "changed while stopped starts",
			in:         passInput{state: RunStateStopped, kind: allocation.KindChanged, formatCompatible: true, policy: OverrideSticky},
			wantAction: ActionStart,
			wantReason: types.ReasonLocalShardsMoved,
		},
		{
			name:       "sticky override blocks start",
			in:         passInput{state: RunStateStopped, kind: allocation.KindChanged, formatCompatible: true, overrideActive: true, policy: OverrideSticky},
			wantAction: ActionNone,
			wantReason: types.ReasonManualOverride,
		},
		{
			name:       "advisory override allows start",
			in:         passInput{state: RunStateStopped, kind: allocation.KindChanged, formatCompatible: true, overrideActive: true, policy: OverrideAdvisory},
			wantAction: ActionStart,
			wantReason: types.ReasonLocalShardsMoved,
		},
		{
			name:       "old format blocks start",
			in:         passInput{state: RunStateStopped, kind: allocation.KindChanged, policy: OverrideSticky},
			wantAction: ActionNone,
			wantReason: types.ReasonFormatTooOld,
		},
		{
			name:       "override reported before format",
			in:         passInput{state: RunStateStopped, kind: allocation.KindChanged, overrideActive: true, policy: OverrideSticky},
			wantAction: ActionNone,
			wantReason: types.ReasonManualOverride,
		},
		{
			name:       "advisory override still honors format",
			in:         passInput{state: RunStateStopped, kind: allocation.KindChanged, overrideActive: true, policy: OverrideAdvisory},
			wantAction: ActionNone,
			wantReason: types.ReasonFormatTooOld,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, reason := decide(tt.in)
			require.Equal(t, tt.wantAction, action)
			require.Equal(t, tt.wantReason, reason)
		})
	}
}

// TestDecide_AtMostOneCommand checks every combination yields a single known action.
func TestDecide_AtMostOneCommand(t *testing.T) {
	states := []RunState{RunStateStopped, RunStateStarted, RunStateStopping}
	kinds := []allocation.Kind{allocation.KindUnchanged, allocation.KindLostAll, allocation.KindChanged}
	policies := []OverridePolicy{OverrideSticky, OverrideAdvisory}

	for _, state := range states {
		for _, kind := range kinds {
			for _, policy := range policies {
				for _, override := range []bool{false, true} {
					for _, compatible := range []bool{false, true} {
						action, reason := decide(passInput{
							state:            state,
							kind:             kind,
							overrideActive:   override,
							policy:           policy,
							formatCompatible: compatible,
						})

						require.NotEmpty(t, reason)
						require.NotEqual(t, ActionStop, action, "passes never stop the service")
						if state == RunStateStopping {
							require.Equal(t, ActionNone, action)
						}
						if action == ActionStart {
							require.Equal(t, RunStateStopped, state)
							require.True(t, compatible)
						}
						if action == ActionPause || action == ActionReload {
							require.Equal(t, RunStateStarted, state)
						}
					}
				}
			}
		}
	}
}
