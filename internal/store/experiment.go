package store

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/splitter/aggregate"
	"github.com/arloliu/splitter/internal/lifecycle"
	"github.com/arloliu/splitter/segment"
	"github.com/arloliu/splitter/types"
)

// Experiment is the live state of one experiment.
//
// The definition, predicate and counters are fixed at creation. Lifecycle
// state, results and the evaluation timestamp are guarded by the experiment
// lock; methods documented as "requires lock" must be called while holding it.
type Experiment struct {
	mu sync.Mutex

	def       types.Definition
	predicate *segment.Predicate
	createdAt time.Time
	counters  []*aggregate.Counters
	index     map[string]int

	status        atomic.Int32
	state         lifecycle.State
	results       *types.Results
	lastEvaluated time.Time

	assignments *xsync.Map[string, types.Assignment]
}

// NewExperiment creates a draft experiment from a validated definition.
func NewExperiment(def types.Definition, predicate *segment.Predicate, createdAt time.Time) *Experiment {
	def = def.Clone()
	e := &Experiment{
		def:         def,
		predicate:   predicate,
		createdAt:   createdAt,
		counters:    make([]*aggregate.Counters, len(def.Variants)),
		index:       make(map[string]int, len(def.Variants)),
		state:       lifecycle.State{Status: types.StatusDraft},
		assignments: xsync.NewMap[string, types.Assignment](),
	}
	for i, v := range def.Variants {
		e.counters[i] = aggregate.NewCounters()
		e.index[v.ID] = i
	}
	e.status.Store(int32(types.StatusDraft))

	return e
}

// ID returns the experiment ID.
func (e *Experiment) ID() string {
	return e.def.ID
}

// Definition returns the experiment definition. Callers must not modify it.
func (e *Experiment) Definition() *types.Definition {
	return &e.def
}

// Predicate returns the compiled segmentation, or nil.
func (e *Experiment) Predicate() *segment.Predicate {
	return e.predicate
}

// CreatedAt returns the creation time.
func (e *Experiment) CreatedAt() time.Time {
	return e.createdAt
}

// Lock acquires the experiment lock.
func (e *Experiment) Lock() {
	e.mu.Lock()
}

// Unlock releases the experiment lock.
func (e *Experiment) Unlock() {
	e.mu.Unlock()
}

// Status returns the current status without taking the lock.
func (e *Experiment) Status() types.Status {
	return types.Status(e.status.Load())
}

// State returns a copy of the lifecycle state. Requires lock.
func (e *Experiment) State() lifecycle.State {
	return e.state
}

// Transition applies a lifecycle transition. Requires lock.
//
// Returns:
//   - types.Status: Status before the transition
//   - error: *types.InvalidStateError when illegal; nothing changes
func (e *Experiment) Transition(tr lifecycle.Transition) (types.Status, error) {
	from := e.state.Status
	tr.ExperimentID = e.def.ID
	if err := lifecycle.Apply(&e.state, tr); err != nil {
		return from, err
	}
	e.status.Store(int32(e.state.Status))

	return from, nil
}

// Results returns the frozen results, or nil. Requires lock.
func (e *Experiment) Results() *types.Results {
	return e.results
}

// SetResults freezes the results. Requires lock.
func (e *Experiment) SetResults(r types.Results) {
	e.results = &r
}

// LastEvaluated returns when the monitor last evaluated the experiment. Requires lock.
func (e *Experiment) LastEvaluated() time.Time {
	return e.lastEvaluated
}

// MarkEvaluated records a monitor evaluation. Requires lock.
func (e *Experiment) MarkEvaluated(at time.Time) {
	e.lastEvaluated = at
}

// Assignment returns the user's assignment without taking the lock.
func (e *Experiment) Assignment(userID string) (types.Assignment, bool) {
	return e.assignments.Load(userID)
}

// AddAssignment records a new assignment and counts the participant. Requires lock.
func (e *Experiment) AddAssignment(a types.Assignment) {
	e.assignments.Store(a.UserID, a)
	if idx, ok := e.index[a.VariantID]; ok {
		e.counters[idx].RecordParticipant()
	}
}

// DeactivateAssignments marks every assignment inactive. Requires lock.
//
// Returns:
//   - []string: Users whose assignment was active
func (e *Experiment) DeactivateAssignments() []string {
	var users []string
	e.assignments.Range(func(userID string, a types.Assignment) bool {
		if a.Active {
			a.Active = false
			e.assignments.Store(userID, a)
			users = append(users, userID)
		}

		return true
	})

	return users
}

// AssignmentCount returns the number of assignments ever created.
func (e *Experiment) AssignmentCount() int {
	return e.assignments.Size()
}

// Variant returns the variant with the given ID.
func (e *Experiment) Variant(id string) (types.Variant, bool) {
	idx, ok := e.index[id]
	if !ok {
		return types.Variant{}, false
	}

	return e.def.Variants[idx], true
}

// Counters returns the metric counters of a variant.
func (e *Experiment) Counters(variantID string) (*aggregate.Counters, bool) {
	idx, ok := e.index[variantID]
	if !ok {
		return nil, false
	}

	return e.counters[idx], true
}

// Participants sums participants over all variants.
func (e *Experiment) Participants() int64 {
	var total int64
	for _, c := range e.counters {
		total += c.Participants()
	}

	return total
}

// VariantStates returns the variants with a snapshot of their metrics.
func (e *Experiment) VariantStates() []types.VariantState {
	states := make([]types.VariantState, len(e.def.Variants))
	for i, v := range e.def.Variants {
		states[i] = types.VariantState{
			Variant: v.Clone(),
			Metrics: e.counters[i].Snapshot(),
		}
	}

	return states
}

// Snapshot returns a copy of the experiment, taking the lock.
func (e *Experiment) Snapshot() types.Experiment {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.SnapshotLocked()
}

// SnapshotLocked returns a copy of the experiment. Requires lock.
func (e *Experiment) SnapshotLocked() types.Experiment {
	snap := types.Experiment{
		ID:                e.def.ID,
		Name:              e.def.Name,
		Description:       e.def.Description,
		TargetMetric:      e.def.TargetMetric,
		TrafficAllocation: e.def.TrafficAllocation,
		Variants:          e.VariantStates(),
		Configuration:     e.def.Configuration,
		Status:            e.state.Status,
		CreatedAt:         e.createdAt,
		StartedAt:         copyTime(e.state.StartedAt),
		EndsAt:            copyTime(e.state.EndsAt),
		EndedAt:           copyTime(e.state.EndedAt),
		StopReason:        e.state.StopReason,
	}
	if e.def.Segmentation != nil {
		seg := e.def.Segmentation.Clone()
		snap.Segmentation = &seg
	}
	if e.results != nil {
		r := e.results.Clone()
		snap.Results = &r
	}

	return snap
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t

	return &c
}
