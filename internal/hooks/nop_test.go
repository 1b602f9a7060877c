package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xiaoshi2013/warden/types"
)

func TestNewNop(t *testing.T) {
	hooks := NewNop()

	require.NotNil(t, hooks.OnDecision)
	require.NotNil(t, hooks.OnError)
}

func TestNopHooks_OnDecision(t *testing.T) {
	hooks := NewNop()

	err := hooks.OnDecision(context.Background(), types.Decision{Action: types.ActionStart})
	require.NoError(t, err)
}

func TestNopHooks_OnError(t *testing.T) {
	hooks := NewNop()

	err := hooks.OnError(context.Background(), errors.New("boom"))
	require.NoError(t, err)
}

func TestFill(t *testing.T) {
	t.Run("nil hooks", func(t *testing.T) {
		h := Fill(nil)
		require.NotNil(t, h.OnDecision)
		require.NotNil(t, h.OnError)
	})

	t.Run("partial hooks keep user callback", func(t *testing.T) {
		var got types.Decision
		h := Fill(&types.Hooks{
			OnDecision: func(_ context.Context, d types.Decision) error {
				got = d
				return nil
			},
		})

		require.NotNil(t, h.OnError)
		require.NoError(t, h.OnError(context.Background(), errors.New("ignored")))

		require.NoError(t, h.OnDecision(context.Background(), types.Decision{Action: types.ActionReload, Reason: "x"}))
		require.Equal(t, types.ActionReload, got.Action)
		require.Equal(t, "x", got.Reason)
	})
}
