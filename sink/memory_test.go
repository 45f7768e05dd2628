package sink

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/splitter/types"
)

func TestMemory(t *testing.T) {
	m := NewMemory()
	ctx := t.Context()

	require.NoError(t, m.SaveExperiment(ctx, types.Experiment{ID: "exp", Status: types.StatusDraft}))
	require.NoError(t, m.SaveExperiment(ctx, types.Experiment{ID: "exp", Status: types.StatusRunning}))
	exp, ok := m.Experiment("exp")
	require.True(t, ok)
	require.Equal(t, types.StatusRunning, exp.Status)

	require.NoError(t, m.SaveAssignment(ctx, types.Assignment{ExperimentID: "exp", UserID: "b", VariantID: "control"}))
	require.NoError(t, m.SaveAssignment(ctx, types.Assignment{ExperimentID: "exp", UserID: "a", VariantID: "treatment"}))
	got := m.Assignments("exp")
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].UserID)
	require.Empty(t, m.Assignments("other"))

	_, ok = m.Results("exp")
	require.False(t, ok)
	require.NoError(t, m.SaveResults(ctx, "exp", types.Results{TotalParticipants: 2}))
	r, ok := m.Results("exp")
	require.True(t, ok)
	require.Equal(t, int64(2), r.TotalParticipants)

	require.NoError(t, m.Publish(ctx, types.Event{Kind: types.EventAssignment}))
	require.NoError(t, m.Publish(ctx, types.Event{Kind: types.EventConversion}))
	require.NoError(t, m.Publish(ctx, types.Event{Kind: types.EventConversion}))
	require.Len(t, m.Events(), 3)
	require.Equal(t, 2, m.EventCount(types.EventConversion))
}

func TestMemory_Concurrent(t *testing.T) {
	m := NewMemory()
	ctx := t.Context()

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 100 {
				_ = m.Publish(ctx, types.Event{Kind: types.EventSession})
			}
		})
	}
	wg.Wait()

	require.Equal(t, 800, m.EventCount(types.EventSession))
}
