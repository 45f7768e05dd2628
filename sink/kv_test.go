package sink

import (
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	splittertest "github.com/arloliu/splitter/testing"
	"github.com/arloliu/splitter/types"
)

func TestKeys(t *testing.T) {
	require.Equal(t, "experiment.Y2hlY2tvdXQ", ExperimentKey("checkout"))
	require.Equal(t, "results.Y2hlY2tvdXQ", ResultsKey("checkout"))
	require.Equal(t, "assignment.Y2hlY2tvdXQ.dUAx", AssignmentKey("checkout", "u@1"))
	require.Equal(t, "splitter.events.Y2hlY2tvdXQ.conversion",
		EventSubject("splitter.events.", "checkout", types.EventConversion))
}

func TestKV_RoundTrip(t *testing.T) {
	_, nc := splittertest.StartEmbeddedNATS(t)
	ctx := t.Context()

	store, err := NewKV(ctx, nc, KVConfig{Bucket: "experiments", Storage: jetstream.MemoryStorage})
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	def := splittertest.ABDefinition("checkout.v2", 0.5)
	def.Variants[1].Parameters = map[string]types.Value{
		"color": types.String("green"),
		"sizes": types.List(types.Int(1), types.Int(2)),
	}
	exp := types.Experiment{
		ID:                def.ID,
		Name:              def.Name,
		TargetMetric:      def.TargetMetric,
		TrafficAllocation: def.TrafficAllocation,
		Configuration:     def.Configuration,
		Status:            types.StatusRunning,
		CreatedAt:         now,
		StartedAt:         &now,
	}
	for _, v := range def.Variants {
		exp.Variants = append(exp.Variants, types.VariantState{Variant: v})
	}

	t.Run("experiment", func(t *testing.T) {
		require.NoError(t, store.SaveExperiment(ctx, exp))

		got, err := store.LoadExperiment(ctx, exp.ID)
		require.NoError(t, err)
		require.Equal(t, exp.ID, got.ID)
		require.Equal(t, types.StatusRunning, got.Status)
		require.Equal(t, types.MetricConversionRate, got.TargetMetric)
		require.True(t, got.StartedAt.Equal(now))
		color, ok := got.Variants[1].Parameters["color"].AsString()
		require.True(t, ok)
		require.Equal(t, "green", color)

		// A later snapshot replaces the earlier one.
		exp.Status = types.StatusCompleted
		require.NoError(t, store.SaveExperiment(ctx, exp))
		got, err = store.LoadExperiment(ctx, exp.ID)
		require.NoError(t, err)
		require.Equal(t, types.StatusCompleted, got.Status)
	})

	t.Run("assignment", func(t *testing.T) {
		a := types.Assignment{
			UserID:       "user 1",
			ExperimentID: exp.ID,
			VariantID:    "treatment",
			AssignedAt:   now,
			Method:       types.MethodDeterministic,
			Active:       true,
		}
		require.NoError(t, store.SaveAssignment(ctx, a))

		got, err := store.LoadAssignment(ctx, exp.ID, "user 1")
		require.NoError(t, err)
		require.Equal(t, a.VariantID, got.VariantID)
		require.Equal(t, types.MethodDeterministic, got.Method)
		require.True(t, got.Active)
	})

	t.Run("results", func(t *testing.T) {
		r := types.Results{
			TotalParticipants: 1000,
			Significance:      types.SignificanceSignificant,
			Confidence:        0.95,
			Recommendation:    types.RecommendAdoptTreatment,
			StopReason:        "manual: stopped",
			CompletedAt:       now,
			Variants: []types.VariantResult{
				{VariantID: "control", IsControl: true, Participants: 500, Value: 0.2},
				{VariantID: "treatment", Participants: 500, Value: 1, ImprovementPct: 400},
			},
		}
		require.NoError(t, store.SaveResults(ctx, exp.ID, r))

		got, err := store.LoadResults(ctx, exp.ID)
		require.NoError(t, err)
		require.Equal(t, types.SignificanceSignificant, got.Significance)
		require.Equal(t, types.RecommendAdoptTreatment, got.Recommendation)
		require.Len(t, got.Variants, 2)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := store.LoadExperiment(ctx, "missing")
		require.ErrorIs(t, err, types.ErrNotFound)
		_, err = store.LoadAssignment(ctx, exp.ID, "nobody")
		require.ErrorIs(t, err, types.ErrNotFound)
		_, err = store.LoadResults(ctx, "missing")
		require.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("experiment ids", func(t *testing.T) {
		other := exp
		other.ID = "another"
		require.NoError(t, store.SaveExperiment(ctx, other))

		ids, err := store.ExperimentIDs(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"another", "checkout.v2"}, ids)
	})
}

func TestNewKV_OpensExistingBucket(t *testing.T) {
	_, nc := splittertest.StartEmbeddedNATS(t)
	ctx := t.Context()

	first, err := NewKV(ctx, nc, KVConfig{Bucket: "shared", Storage: jetstream.MemoryStorage})
	require.NoError(t, err)
	require.NoError(t, first.SaveResults(ctx, "exp", types.Results{TotalParticipants: 7}))

	second, err := NewKV(ctx, nc, KVConfig{Bucket: "shared", Storage: jetstream.MemoryStorage})
	require.NoError(t, err)
	r, err := second.LoadResults(ctx, "exp")
	require.NoError(t, err)
	require.Equal(t, int64(7), r.TotalParticipants)
}

func TestNewKVFromBucket(t *testing.T) {
	_, nc := splittertest.StartEmbeddedNATS(t)
	bucket := splittertest.CreateJetStreamKV(t, nc, "prebuilt")

	store := NewKVFromBucket(bucket)
	ids, err := store.ExperimentIDs(t.Context())
	require.NoError(t, err)
	require.Empty(t, ids)
}
