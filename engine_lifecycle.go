package splitter

import (
	"context"

	"github.com/arloliu/splitter/internal/lifecycle"
	"github.com/arloliu/splitter/internal/store"
	"github.com/arloliu/splitter/stats"
)

// Default stop reasons for manual transitions.
const (
	ReasonManualStop     = "manual: stopped"
	ReasonManualComplete = "manual: completed"
)

// statusChange is one applied transition, reported after the experiment lock is released.
type statusChange struct {
	from, to Status
}

// ApproveExperiment moves a draft experiment to approved.
//
// Returns:
//   - Experiment: Snapshot after the transition
//   - error: *NotFoundError, or *InvalidStateError when the experiment is not a draft
func (e *Engine) ApproveExperiment(ctx context.Context, experimentID string) (Experiment, error) {
	return e.transition(ctx, experimentID, "approve", "", func(Status) []Status {
		return []Status{StatusApproved}
	})
}

// StartExperiment moves an experiment to running.
//
// Approved and paused experiments start directly; a draft experiment is
// validated again and approved on the way. Resuming a paused experiment keeps
// its original start time and moves its end date.
//
// Returns:
//   - Experiment: Snapshot after the transition
//   - error: *NotFoundError, *ValidationError, or *InvalidStateError when the
//     experiment is already running or finished
func (e *Engine) StartExperiment(ctx context.Context, experimentID string) (Experiment, error) {
	return e.transition(ctx, experimentID, "start", "", func(from Status) []Status {
		if from == StatusDraft {
			return []Status{StatusApproved, StatusRunning}
		}

		return []Status{StatusRunning}
	})
}

// PauseExperiment suspends new assignments of a running experiment.
//
// Existing assignments stay active and metric events keep being recorded.
//
// Returns:
//   - Experiment: Snapshot after the transition
//   - error: *NotFoundError, or *InvalidStateError when the experiment is not running
func (e *Engine) PauseExperiment(ctx context.Context, experimentID string) (Experiment, error) {
	return e.transition(ctx, experimentID, "pause", "", func(Status) []Status {
		return []Status{StatusPaused}
	})
}

// StopExperiment cancels a running or paused experiment and freezes its results.
//
// Parameters:
//   - ctx: Context for cancellation
//   - experimentID: Experiment to stop
//   - reason: Stop reason recorded on the experiment (ReasonManualStop if empty)
//
// Returns:
//   - Experiment: Snapshot after the transition, including results
//   - error: *NotFoundError, or *InvalidStateError for a draft, approved or finished experiment
func (e *Engine) StopExperiment(ctx context.Context, experimentID, reason string) (Experiment, error) {
	if reason == "" {
		reason = ReasonManualStop
	}

	return e.transition(ctx, experimentID, "stop", reason, func(Status) []Status {
		return []Status{StatusCancelled}
	})
}

// CompleteExperiment completes a running or paused experiment and freezes its results.
//
// Returns:
//   - Experiment: Snapshot after the transition, including results
//   - error: *NotFoundError, or *InvalidStateError for a draft, approved or finished experiment
func (e *Engine) CompleteExperiment(ctx context.Context, experimentID, reason string) (Experiment, error) {
	if reason == "" {
		reason = ReasonManualComplete
	}

	return e.transition(ctx, experimentID, "complete", reason, func(Status) []Status {
		return []Status{StatusCompleted}
	})
}

// transition applies the statuses returned by plan under the experiment lock.
func (e *Engine) transition(ctx context.Context, experimentID, op, reason string, plan func(from Status) []Status) (Experiment, error) {
	if e.closed.Load() {
		return Experiment{}, ErrEngineClosed
	}
	if err := ctx.Err(); err != nil {
		return Experiment{}, err
	}

	exp, err := e.lookup(experimentID)
	if err != nil {
		return Experiment{}, err
	}

	exp.Lock()
	steps := plan(exp.State().Status)
	if exp.State().Status == StatusDraft && len(steps) > 1 {
		if err := e.validator.Definition(*exp.Definition()); err != nil {
			exp.Unlock()
			return Experiment{}, err
		}
	}

	changes, results, err := e.applyLocked(exp, op, reason, steps)
	if err != nil {
		exp.Unlock()
		e.logger.Debug("transition rejected", "experiment_id", experimentID, "op", op, "error", err)

		return Experiment{}, err
	}
	snap := exp.SnapshotLocked()
	exp.Unlock()

	e.report(snap, changes, results)

	return snap, nil
}

// applyLocked applies steps in order and finalizes the experiment when a terminal
// status is reached. Requires the experiment lock.
//
// Steps are checked up front so a rejected sequence leaves the experiment untouched.
func (e *Engine) applyLocked(exp *store.Experiment, op, reason string, steps []Status) ([]statusChange, *Results, error) {
	from := exp.State().Status
	for _, to := range steps {
		if !lifecycle.CanTransition(from, to) {
			return nil, nil, &InvalidStateError{ExperimentID: exp.ID(), Op: op, From: from, To: to}
		}
		from = to
	}

	now := e.now()
	def := exp.Definition()
	changes := make([]statusChange, 0, len(steps))
	var results *Results
	for _, to := range steps {
		prev, err := exp.Transition(lifecycle.Transition{
			Op:          op,
			To:          to,
			At:          now,
			MaxDuration: def.Configuration.MaxDuration,
			Reason:      reason,
		})
		if err != nil {
			return nil, nil, err
		}
		changes = append(changes, statusChange{from: prev, to: to})

		if to.IsTerminal() {
			r := e.analyzer.Finalize(
				stats.InputsFrom(exp.VariantStates()),
				def.TargetMetric,
				def.Configuration.ConfidenceLevel,
				reason,
				now,
			)
			exp.SetResults(r)
			for _, userID := range exp.DeactivateAssignments() {
				e.experiments.Release(userID, exp.ID())
			}
			results = &r
		}
	}

	return changes, results, nil
}

// report logs, records and notifies applied transitions. Must be called without the experiment lock.
func (e *Engine) report(snap Experiment, changes []statusChange, results *Results) {
	for _, c := range changes {
		e.metrics.RecordStatusTransition(snap.ID, c.from, c.to)
		e.logger.Info("experiment status changed",
			"experiment_id", snap.ID,
			"from", c.from.String(),
			"to", c.to.String(),
		)
		e.notifyStatus(snap, c.from, c.to, e.now())
	}

	if results != nil {
		e.logger.Info("experiment finished",
			"experiment_id", snap.ID,
			"reason", results.StopReason,
			"participants", results.TotalParticipants,
			"significance", results.Significance.String(),
			"recommendation", results.Recommendation.String(),
		)
		e.notifyCompleted(snap.ID, results.Clone())
	}
}
