package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/splitter/types"
)

func TestNewNop(t *testing.T) {
	hooks := NewNop()

	require.NotNil(t, hooks.OnAssignment)
	require.NotNil(t, hooks.OnStatusChanged)
	require.NotNil(t, hooks.OnCompleted)
	require.NotNil(t, hooks.OnError)
}

func TestNopHooks_Callbacks(t *testing.T) {
	hooks := NewNop()
	ctx := context.Background()

	require.NoError(t, hooks.OnAssignment(ctx, types.Assignment{UserID: "u1", ExperimentID: "exp", VariantID: "control"}))
	require.NoError(t, hooks.OnStatusChanged(ctx, "exp", types.StatusApproved, types.StatusRunning))
	require.NoError(t, hooks.OnCompleted(ctx, "exp", types.Results{Recommendation: types.RecommendKeepControl}))
	require.NoError(t, hooks.OnError(ctx, context.Canceled))
}

func TestWithDefaults(t *testing.T) {
	t.Run("nil hooks", func(t *testing.T) {
		hooks := WithDefaults(nil)
		require.NotNil(t, hooks.OnAssignment)
		require.NotNil(t, hooks.OnError)
	})

	t.Run("partial hooks", func(t *testing.T) {
		errCustom := errors.New("custom")
		hooks := WithDefaults(&types.Hooks{
			OnError: func(context.Context, error) error { return errCustom },
		})

		require.NotNil(t, hooks.OnCompleted)
		require.NoError(t, hooks.OnStatusChanged(context.Background(), "exp", types.StatusRunning, types.StatusPaused))
		require.ErrorIs(t, hooks.OnError(context.Background(), nil), errCustom)
	})
}
