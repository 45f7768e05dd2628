package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// Methods are called from request paths and from the monitor goroutine and
// must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	AssignmentMetrics
	EventMetrics
	LifecycleMetrics
	DispatchMetrics
}

// AssignmentMetrics defines metrics for assignment decisions.
type AssignmentMetrics interface {
	// RecordAssignment records a newly created assignment.
	RecordAssignment(experimentID, variantID string)

	// RecordExclusion records a user that received no variant.
	//
	// Parameters:
	//   - experimentID: Experiment the user was evaluated for
	//   - reason: Exclusion reason ("not_running", "traffic", "segment", "overlap")
	RecordExclusion(experimentID, reason string)
}

// EventMetrics defines metrics for recorded user events.
type EventMetrics interface {
	// RecordConversion records a conversion with its monetary value.
	RecordConversion(experimentID, variantID string, value float64)

	// RecordSession records a session with its duration in seconds.
	RecordSession(experimentID, variantID string, seconds float64)

	// RecordRetention records a retained user for the given day offset.
	RecordRetention(experimentID, variantID string, day int)

	// RecordIgnoredEvent records an event dropped because no active assignment existed.
	//
	// Parameters:
	//   - experimentID: Experiment the event targeted
	//   - kind: Event kind ("conversion", "session", "retention", "custom")
	RecordIgnoredEvent(experimentID, kind string)
}

// LifecycleMetrics defines metrics for experiment lifecycle operations.
type LifecycleMetrics interface {
	// RecordStatusTransition records an experiment status change.
	RecordStatusTransition(experimentID string, from, to Status)

	// RecordAutoStop records an automatic stop and its reason.
	RecordAutoStop(experimentID, reason string)

	// RecordMonitorPass records the duration in seconds of one monitor evaluation pass.
	RecordMonitorPass(seconds float64, evaluated int)
}

// DispatchMetrics defines metrics for collaborator notifications.
type DispatchMetrics interface {
	// RecordNotificationDropped records a notification dropped because the queue was full.
	RecordNotificationDropped(kind string)

	// RecordNotificationFailed records a notification whose delivery returned an error.
	RecordNotificationFailed(kind string)
}
