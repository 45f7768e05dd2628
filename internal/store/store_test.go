package store

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/splitter/internal/lifecycle"
	"github.com/arloliu/splitter/types"
)

var t0 = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestExperiment(id string, createdAt time.Time) *Experiment {
	return NewExperiment(types.Definition{
		ID:                id,
		Name:              id,
		TrafficAllocation: 1,
		Variants: []types.Variant{
			{ID: "control", Weight: 0.5, IsControl: true},
			{ID: "treatment", Weight: 0.5},
		},
	}, nil, createdAt)
}

func TestStore_AddGetList(t *testing.T) {
	s := New()

	require.True(t, s.Add(newTestExperiment("b", t0)))
	require.True(t, s.Add(newTestExperiment("a", t0)))
	require.True(t, s.Add(newTestExperiment("c", t0.Add(-time.Minute))))
	require.False(t, s.Add(newTestExperiment("a", t0)))

	_, ok := s.Get("missing")
	require.False(t, ok)

	exp, ok := s.Get("a")
	require.True(t, ok)
	require.Equal(t, "a", exp.ID())
	require.Equal(t, 3, s.Len())

	ids := make([]string, 0, 3)
	for _, e := range s.List() {
		ids = append(ids, e.ID())
	}
	require.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestStore_ClaimOverlap(t *testing.T) {
	s := New()

	require.True(t, s.Claim("u1", "exp-a", false))
	require.True(t, s.Claim("u1", "exp-a", false), "re-claiming the same experiment is allowed")
	require.False(t, s.Claim("u1", "exp-b", false))
	require.True(t, s.Claim("u1", "exp-c", true))
	require.Equal(t, []string{"exp-a", "exp-c"}, s.ActiveExperiments("u1"))

	s.Release("u1", "exp-a")
	s.Release("u1", "exp-c")
	require.True(t, s.Claim("u1", "exp-b", false))
	require.Equal(t, []string{"exp-b"}, s.ActiveExperiments("u1"))

	s.Release("nobody", "exp-b")
	require.Empty(t, s.ActiveExperiments("nobody"))
}

func TestStore_ClaimConcurrentExclusive(t *testing.T) {
	s := New()

	var won atomic.Int32
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Go(func() {
			if s.Claim("u1", string(rune('a'+i%26))+"-exp", false) {
				won.Add(1)
			}
		})
	}
	wg.Wait()

	require.Len(t, s.ActiveExperiments("u1"), 1)
	require.GreaterOrEqual(t, won.Load(), int32(1))
}

func TestExperiment_TransitionAndSnapshot(t *testing.T) {
	exp := newTestExperiment("exp", t0)
	require.Equal(t, types.StatusDraft, exp.Status())

	exp.Lock()
	from, err := exp.Transition(lifecycle.Transition{To: types.StatusApproved, At: t0})
	require.NoError(t, err)
	require.Equal(t, types.StatusDraft, from)
	_, err = exp.Transition(lifecycle.Transition{To: types.StatusRunning, At: t0, MaxDuration: time.Hour})
	require.NoError(t, err)
	_, err = exp.Transition(lifecycle.Transition{Op: "start", To: types.StatusRunning, At: t0})
	require.ErrorIs(t, err, types.ErrInvalidState)
	exp.Unlock()

	require.Equal(t, types.StatusRunning, exp.Status())

	snap := exp.Snapshot()
	require.Equal(t, types.StatusRunning, snap.Status)
	require.Equal(t, t0, *snap.StartedAt)
	require.Equal(t, t0.Add(time.Hour), *snap.EndsAt)
	require.Nil(t, snap.EndedAt)

	*snap.StartedAt = t0.Add(time.Hour)
	require.Equal(t, t0, *exp.Snapshot().StartedAt)
}

func TestExperiment_Assignments(t *testing.T) {
	exp := newTestExperiment("exp", t0)

	exp.Lock()
	exp.AddAssignment(types.Assignment{UserID: "u1", ExperimentID: "exp", VariantID: "treatment", Active: true})
	exp.AddAssignment(types.Assignment{UserID: "u2", ExperimentID: "exp", VariantID: "control", Active: true})
	exp.Unlock()

	a, ok := exp.Assignment("u1")
	require.True(t, ok)
	require.Equal(t, "treatment", a.VariantID)
	require.Equal(t, int64(2), exp.Participants())
	require.Equal(t, 2, exp.AssignmentCount())

	counters, ok := exp.Counters("treatment")
	require.True(t, ok)
	require.Equal(t, int64(1), counters.Participants())

	exp.Lock()
	users := exp.DeactivateAssignments()
	exp.Unlock()
	require.ElementsMatch(t, []string{"u1", "u2"}, users)

	a, _ = exp.Assignment("u1")
	require.False(t, a.Active)
}

func TestExperiment_Variant(t *testing.T) {
	exp := newTestExperiment("exp", t0)

	v, ok := exp.Variant("control")
	require.True(t, ok)
	require.True(t, v.IsControl)

	_, ok = exp.Variant("nope")
	require.False(t, ok)
	_, ok = exp.Counters("nope")
	require.False(t, ok)
}
