package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations must be non-blocking and safe for concurrent use.
type MetricsCollector interface {
	ControllerMetrics
	StatusMetrics
}

// ControllerMetrics defines metrics for reconciliation and manual requests.
type ControllerMetrics interface {
	// RecordPass records a completed reconciliation pass.
	//
	// Parameters:
	//   - action: Action chosen by the pass ("none", "pause", ...)
	//   - duration: Time taken in seconds
	RecordPass(action string, duration float64)

	// RecordDecision records a decision with its reason.
	RecordDecision(action, reason string)

	// RecordServiceError records a failed command against the controlled service.
	RecordServiceError(action string)

	// SetTrackedShards sets the number of locally tracked shard copies for an index.
	SetTrackedShards(index string, count int)

	// SetManualOverride sets whether the manual override is active.
	SetManualOverride(active bool)
}

// StatusMetrics defines metrics for node status publishing.
type StatusMetrics interface {
	// RecordStatusPublish records a status publish attempt.
	RecordStatusPublish(success bool)
}
