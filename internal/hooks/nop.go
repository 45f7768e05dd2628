package hooks

import (
	"context"

	"github.com/arloliu/splitter/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(context.Context, types.Assignment) error                   = (*NopHooks)(nil).OnAssignment
	_ func(context.Context, string, types.Status, types.Status) error = (*NopHooks)(nil).OnStatusChanged
	_ func(context.Context, string, types.Results) error              = (*NopHooks)(nil).OnCompleted
	_ func(context.Context, error) error                              = (*NopHooks)(nil).OnError
)

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - types.Hooks: Hooks with no-op implementations
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnAssignment:    h.OnAssignment,
		OnStatusChanged: h.OnStatusChanged,
		OnCompleted:     h.OnCompleted,
		OnError:         h.OnError,
	}
}

// WithDefaults returns a copy of h whose nil callbacks are replaced by no-ops.
//
// Parameters:
//   - h: Caller-provided hooks, may be nil
//
// Returns:
//   - types.Hooks: Hooks with every callback set
func WithDefaults(h *types.Hooks) types.Hooks {
	out := NewNop()
	if h == nil {
		return out
	}
	if h.OnAssignment != nil {
		out.OnAssignment = h.OnAssignment
	}
	if h.OnStatusChanged != nil {
		out.OnStatusChanged = h.OnStatusChanged
	}
	if h.OnCompleted != nil {
		out.OnCompleted = h.OnCompleted
	}
	if h.OnError != nil {
		out.OnError = h.OnError
	}

	return out
}

// OnAssignment is a no-op implementation.
func (h *NopHooks) OnAssignment(ctx context.Context, assignment types.Assignment) error {
	return nil
}

// OnStatusChanged is a no-op implementation.
func (h *NopHooks) OnStatusChanged(ctx context.Context, experimentID string, from, to types.Status) error {
	return nil
}

// OnCompleted is a no-op implementation.
func (h *NopHooks) OnCompleted(ctx context.Context, experimentID string, results types.Results) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(ctx context.Context, err error) error {
	return nil
}
