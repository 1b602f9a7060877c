package types

import "context"

// Hooks defines callbacks for controller events.
//
// All hooks are optional and run in background goroutines so they never hold
// the controller's lock. Hook errors are logged and otherwise ignored.
//
// Example:
//
//	hooks := &warden.Hooks{
//	    OnDecision: func(ctx context.Context, d warden.Decision) error {
//	        if d.Action == warden.ActionPause {
//	            alerts.Notify("watcher paused: " + d.Reason)
//	        }
//	        return nil
//	    },
//	}
type Hooks struct {
	// OnDecision is called after every decision that issued a command.
	OnDecision func(ctx context.Context, decision Decision) error

	// OnError is called when a service command or a delivery fails.
	OnError func(ctx context.Context, err error) error
}
