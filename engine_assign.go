package splitter

import (
	"context"
	"fmt"

	"github.com/arloliu/splitter/internal/hash"
	"github.com/arloliu/splitter/internal/store"
	"github.com/arloliu/splitter/types"
)

// GetVariant returns the variant the user is assigned to in a running experiment.
//
// Parameters:
//   - ctx: Context passed to the profile source
//   - userID: User requesting a variant
//   - experimentID: Experiment to evaluate
//
// Returns:
//   - Variant: Assigned variant when included
//   - bool: false when the user is excluded (see Decide for the reason)
//   - error: *NotFoundError for an unknown experiment
func (e *Engine) GetVariant(ctx context.Context, userID, experimentID string) (Variant, bool, error) {
	d, err := e.Decide(ctx, userID, experimentID)
	if err != nil {
		return Variant{}, false, err
	}

	return d.Variant, d.Included, nil
}

// Decide assigns the user to a variant or explains the exclusion.
//
// Decision order:
//  1. The experiment must be running (ExclusionNotRunning)
//  2. An active assignment is reused as is
//  3. The traffic draw must fall below the traffic allocation (ExclusionTraffic)
//  4. The user's profile must match the segmentation, if any (ExclusionSegment)
//  5. Without AllowOverlap the user must not be active elsewhere (ExclusionOverlap)
//  6. A variant is allocated from an independent draw and the assignment recorded
//
// The draws depend only on the user ID, the experiment ID and the configured
// hash seed, so an excluded user stays excluded for the same inputs.
//
// Returns:
//   - Decision: Inclusion with the variant, or exclusion with the reason
//   - error: *NotFoundError for an unknown experiment, ErrEngineClosed after Close
func (e *Engine) Decide(ctx context.Context, userID, experimentID string) (Decision, error) {
	if e.closed.Load() {
		return Decision{}, ErrEngineClosed
	}

	exp, err := e.lookup(experimentID)
	if err != nil {
		return Decision{}, err
	}

	if exp.Status() != StatusRunning {
		return e.exclude(experimentID, ExclusionNotRunning), nil
	}
	if d, ok := existing(exp, userID); ok {
		return d, nil
	}

	// The profile source may be remote; consult it before taking the lock.
	segmented := true
	def := exp.Definition()
	if exp.Predicate() != nil && e.hasher.Draw(userID, def.ID, hash.SaltTraffic) < def.TrafficAllocation {
		segmented = e.matchesSegment(ctx, exp, userID)
	}

	exp.Lock()
	decision, assignment, err := e.decideLocked(exp, userID, segmented)
	exp.Unlock()
	if err != nil {
		return Decision{}, err
	}

	if !decision.Included {
		return e.exclude(experimentID, decision.Reason), nil
	}
	if assignment != nil {
		e.metrics.RecordAssignment(experimentID, assignment.VariantID)
		e.notifyAssignment(*assignment)
	}

	return decision, nil
}

// decideLocked runs the assignment steps. Requires the experiment lock.
//
// segmented is the outcome of the segmentation check, evaluated by the caller
// outside the lock.
//
// Returns:
//   - Decision: Outcome
//   - *Assignment: Newly created assignment, nil when reused or excluded
//   - error: Allocation failure
func (e *Engine) decideLocked(exp *store.Experiment, userID string, segmented bool) (Decision, *Assignment, error) {
	// Status may have changed while waiting for the lock.
	if exp.State().Status != StatusRunning {
		return Decision{Reason: ExclusionNotRunning}, nil, nil
	}
	if d, ok := existing(exp, userID); ok {
		return d, nil, nil
	}

	def := exp.Definition()
	if e.hasher.Draw(userID, def.ID, hash.SaltTraffic) >= def.TrafficAllocation {
		return Decision{Reason: ExclusionTraffic}, nil, nil
	}

	if !segmented {
		return Decision{Reason: ExclusionSegment}, nil, nil
	}

	if !e.experiments.Claim(userID, def.ID, def.Configuration.AllowOverlap) {
		return Decision{Reason: ExclusionOverlap}, nil, nil
	}

	idx, err := e.strategy.Allocate(def.Variants, e.hasher.Draw(userID, def.ID, hash.SaltVariant))
	if err != nil || idx < 0 || idx >= len(def.Variants) {
		e.experiments.Release(userID, def.ID)
		if err == nil {
			err = fmt.Errorf("allocation strategy returned index %d for %d variants", idx, len(def.Variants))
		}

		return Decision{}, nil, fmt.Errorf("failed to allocate variant for experiment %q: %w", def.ID, err)
	}

	variant := def.Variants[idx]
	a := Assignment{
		UserID:       userID,
		ExperimentID: def.ID,
		VariantID:    variant.ID,
		AssignedAt:   e.now(),
		Method:       types.MethodDeterministic,
		Active:       true,
	}
	exp.AddAssignment(a)

	return Decision{Included: true, Variant: variant.Clone()}, &a, nil
}

func (e *Engine) matchesSegment(ctx context.Context, exp *store.Experiment, userID string) bool {
	if e.profiles == nil {
		return false
	}

	profile, ok, err := e.profiles.GetProfile(ctx, userID)
	if err != nil {
		e.logger.Warn("profile lookup failed", "experiment_id", exp.ID(), "user_id", userID, "error", err)
		return false
	}
	if !ok {
		return false
	}

	return exp.Predicate().Matches(profile)
}

func (e *Engine) exclude(experimentID string, reason ExclusionReason) Decision {
	e.metrics.RecordExclusion(experimentID, reason.String())
	return Decision{Reason: reason}
}

// existing returns the decision for an active assignment, if any.
func existing(exp *store.Experiment, userID string) (Decision, bool) {
	a, ok := exp.Assignment(userID)
	if !ok || !a.Active {
		return Decision{}, false
	}

	variant, ok := exp.Variant(a.VariantID)
	if !ok {
		return Decision{}, false
	}

	return Decision{Included: true, Variant: variant.Clone(), Existing: true}, true
}
