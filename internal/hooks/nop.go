package hooks

import (
	"context"

	"github.com/xiaoshi2013/warden/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(context.Context, types.Decision) error = (*NopHooks)(nil).OnDecision
	_ func(context.Context, error) error          = (*NopHooks)(nil).OnError
)

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - types.Hooks: Hooks with no-op implementations
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnDecision: h.OnDecision,
		OnError:    h.OnError,
	}
}

// Fill returns hooks with every nil callback replaced by its no-op counterpart.
//
// Parameters:
//   - h: User supplied hooks, may be nil
//
// Returns:
//   - types.Hooks: Hooks safe to call without nil checks
func Fill(h *types.Hooks) types.Hooks {
	out := NewNop()
	if h == nil {
		return out
	}
	if h.OnDecision != nil {
		out.OnDecision = h.OnDecision
	}
	if h.OnError != nil {
		out.OnError = h.OnError
	}

	return out
}

// OnDecision is a no-op implementation.
func (h *NopHooks) OnDecision(ctx context.Context, decision types.Decision) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(ctx context.Context, err error) error {
	return nil
}
