package splitter

import (
	"context"
	"time"

	"github.com/arloliu/splitter/aggregate"
	"github.com/arloliu/splitter/types"
)

// RecordConversion records a conversion with an optional monetary value.
//
// Events for users without an active assignment, and for finished
// experiments, are ignored without error. Paused experiments still accept
// events from already assigned users.
//
// Parameters:
//   - ctx: Context for cancellation
//   - userID: Converting user
//   - experimentID: Experiment the conversion is attributed to
//   - value: Revenue of the conversion, 0 for none
//
// Returns:
//   - error: *NotFoundError for an unknown experiment
func (e *Engine) RecordConversion(ctx context.Context, userID, experimentID string, value float64) error {
	return e.record(ctx, types.Event{
		Kind:         types.EventConversion,
		ExperimentID: experimentID,
		UserID:       userID,
		Value:        value,
	}, func(c *aggregate.Counters, variantID string) bool {
		c.RecordConversion(value)
		e.metrics.RecordConversion(experimentID, variantID, value)
		return true
	})
}

// RecordSession records one session of the given duration.
//
// Negative durations are ignored.
//
// Returns:
//   - error: *NotFoundError for an unknown experiment
func (e *Engine) RecordSession(ctx context.Context, userID, experimentID string, duration time.Duration) error {
	return e.record(ctx, types.Event{
		Kind:         types.EventSession,
		ExperimentID: experimentID,
		UserID:       userID,
		Duration:     duration,
	}, func(c *aggregate.Counters, variantID string) bool {
		if duration < 0 {
			return false
		}
		c.RecordSession(duration)
		e.metrics.RecordSession(experimentID, variantID, duration.Seconds())
		return true
	})
}

// RecordRetention records that the user came back on the given day after assignment.
//
// A user counts once per day; repeated events for the same day are ignored.
//
// Returns:
//   - error: *NotFoundError for an unknown experiment
func (e *Engine) RecordRetention(ctx context.Context, userID, experimentID string, day int) error {
	return e.record(ctx, types.Event{
		Kind:         types.EventRetention,
		ExperimentID: experimentID,
		UserID:       userID,
		Day:          day,
	}, func(c *aggregate.Counters, variantID string) bool {
		if !c.RecordRetention(userID, day) {
			return false
		}
		e.metrics.RecordRetention(experimentID, variantID, day)
		return true
	})
}

// RecordCustomMetric adds value to a named per-variant accumulator.
//
// Custom metrics appear in Metrics.Custom of experiment snapshots.
//
// Returns:
//   - error: *NotFoundError for an unknown experiment
func (e *Engine) RecordCustomMetric(ctx context.Context, userID, experimentID, name string, value float64) error {
	return e.record(ctx, types.Event{
		Kind:         types.EventCustom,
		ExperimentID: experimentID,
		UserID:       userID,
		Name:         name,
		Value:        value,
	}, func(c *aggregate.Counters, _ string) bool {
		c.RecordCustom(name, value)
		return true
	})
}

// record applies an event to the counters of the user's variant without taking the experiment lock.
//
// apply returns false to reject the event; rejected events are counted as
// ignored and not forwarded to collaborators.
func (e *Engine) record(ctx context.Context, ev types.Event, apply func(c *aggregate.Counters, variantID string) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	exp, err := e.lookup(ev.ExperimentID)
	if err != nil {
		return err
	}

	if exp.Status().IsTerminal() {
		e.metrics.RecordIgnoredEvent(ev.ExperimentID, string(ev.Kind))
		return nil
	}

	a, ok := exp.Assignment(ev.UserID)
	if !ok || !a.Active {
		e.metrics.RecordIgnoredEvent(ev.ExperimentID, string(ev.Kind))
		return nil
	}

	counters, ok := exp.Counters(a.VariantID)
	if !ok {
		return nil
	}
	if !apply(counters, a.VariantID) {
		e.metrics.RecordIgnoredEvent(ev.ExperimentID, string(ev.Kind))
		return nil
	}

	ev.VariantID = a.VariantID
	ev.Timestamp = e.now()
	e.notifyEvent(ev)

	return nil
}
