package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunStateString(t *testing.T) {
	tests := []struct {
		state RunState
		want  string
	}{
		{RunStateStopped, "Stopped"},
		{RunStateStarted, "Started"},
		{RunStateStopping, "Stopping"},
		{RunState(42), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, tt.state.String())
		})
	}
}
