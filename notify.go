package splitter

import (
	"context"
	"errors"
	"time"

	"github.com/arloliu/splitter/internal/dispatch"
	"github.com/arloliu/splitter/types"
)

// enqueue schedules delivery of fns on the dispatcher. Nil functions are skipped.
func (e *Engine) enqueue(kind types.EventKind, experimentID string, fns ...func(ctx context.Context) error) {
	deliveries := make([]func(ctx context.Context) error, 0, len(fns))
	for _, fn := range fns {
		if fn != nil {
			deliveries = append(deliveries, fn)
		}
	}
	if len(deliveries) == 0 {
		return
	}

	err := e.dispatcher.Enqueue(dispatch.Notification{
		Kind:         string(kind),
		ExperimentID: experimentID,
		Deliver: func(ctx context.Context) error {
			var errs []error
			for _, fn := range deliveries {
				if err := fn(ctx); err != nil {
					errs = append(errs, err)
				}
			}

			return errors.Join(errs...)
		},
	})
	if err != nil && !errors.Is(err, dispatch.ErrQueueFull) {
		e.logger.Debug("notification not enqueued", "kind", kind, "experiment_id", experimentID, "error", err)
	}
}

// publish returns a delivery that sends ev to the event publisher, or nil without one.
func (e *Engine) publish(ev types.Event) func(ctx context.Context) error {
	if e.publisher == nil {
		return nil
	}

	return func(ctx context.Context) error {
		return e.publisher.Publish(ctx, ev)
	}
}

func (e *Engine) notifyExperiment(snap Experiment) {
	if e.sink == nil {
		return
	}
	e.enqueue(types.EventStatusChanged, snap.ID, func(ctx context.Context) error {
		return e.sink.SaveExperiment(ctx, snap)
	})
}

func (e *Engine) notifyAssignment(a Assignment) {
	var save func(ctx context.Context) error
	if e.sink != nil {
		save = func(ctx context.Context) error {
			return e.sink.SaveAssignment(ctx, a)
		}
	}

	e.enqueue(types.EventAssignment, a.ExperimentID,
		save,
		e.publish(types.Event{
			Kind:         types.EventAssignment,
			ExperimentID: a.ExperimentID,
			UserID:       a.UserID,
			VariantID:    a.VariantID,
			Timestamp:    a.AssignedAt,
		}),
		func(ctx context.Context) error {
			return e.hooks.OnAssignment(ctx, a)
		},
	)
}

func (e *Engine) notifyEvent(ev types.Event) {
	e.enqueue(ev.Kind, ev.ExperimentID, e.publish(ev))
}

func (e *Engine) notifyStatus(snap Experiment, from, to Status, at time.Time) {
	var save func(ctx context.Context) error
	if e.sink != nil {
		save = func(ctx context.Context) error {
			return e.sink.SaveExperiment(ctx, snap)
		}
	}

	e.enqueue(types.EventStatusChanged, snap.ID,
		save,
		e.publish(types.Event{
			Kind:         types.EventStatusChanged,
			ExperimentID: snap.ID,
			From:         &from,
			To:           &to,
			Timestamp:    at,
		}),
		func(ctx context.Context) error {
			return e.hooks.OnStatusChanged(ctx, snap.ID, from, to)
		},
	)
}

func (e *Engine) notifyCompleted(experimentID string, results Results) {
	var save func(ctx context.Context) error
	if e.sink != nil {
		save = func(ctx context.Context) error {
			return e.sink.SaveResults(ctx, experimentID, results)
		}
	}

	e.enqueue(types.EventCompleted, experimentID,
		save,
		e.publish(types.Event{
			Kind:         types.EventCompleted,
			ExperimentID: experimentID,
			Name:         results.Recommendation.String(),
			Timestamp:    results.CompletedAt,
		}),
		func(ctx context.Context) error {
			return e.hooks.OnCompleted(ctx, experimentID, results)
		},
	)
}
