// Package override holds the operator stop flag consulted before automatic starts.
package override

// Flag records an operator stop request and its reason.
//
// The zero value is inactive. Flag is not safe for concurrent use; the
// controller guards it with the same lock as the allocation tracker.
type Flag struct {
	active bool
	reason string
}

// Set activates the flag with the given reason, replacing any previous reason.
func (f *Flag) Set(reason string) {
	f.active = true
	f.reason = reason
}

// Clear deactivates the flag.
func (f *Flag) Clear() {
	f.active = false
	f.reason = ""
}

// Active reports whether an operator stop is in effect.
func (f *Flag) Active() bool {
	return f.active
}

// Reason returns the reason of the active stop, or "" when inactive.
func (f *Flag) Reason() string {
	return f.reason
}
