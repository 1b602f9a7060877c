package types

import "time"

// TrackedIndex is the locally tracked allocation of one system index.
type TrackedIndex struct {
	// CopyIDs lists the tracked shard-copy identifiers in sorted order.
	CopyIDs []string `json:"copyIds"`

	// Fingerprint is a hash of CopyIDs, stable across processes.
	Fingerprint uint64 `json:"fingerprint"`
}

// Status is a point-in-time report of a controller.
type Status struct {
	NodeID         string                  `json:"node"`
	RunState       string                  `json:"runState"`
	ManualOverride bool                    `json:"manualOverride"`
	OverrideReason string                  `json:"overrideReason,omitempty"`
	Tracked        map[string]TrackedIndex `json:"tracked,omitempty"`
	LastDecision   *Decision               `json:"lastDecision,omitempty"`
	Closed         bool                    `json:"closed,omitempty"`
	UpdatedAt      time.Time               `json:"updatedAt"`
}
