package types

import "context"

// Hooks defines callbacks for engine events.
//
// All hooks are optional and are invoked asynchronously from the engine's
// notification dispatcher, in the order the events happened. They never
// influence assignment or lifecycle decisions.
//
// IMPORTANT: Hook execution behavior:
//   - Hooks share one dispatcher goroutine; a slow hook delays later notifications
//   - Notifications are dropped when the dispatcher queue is full
//   - Hook errors are logged but don't fail engine operations
//
// Example:
//
//	hooks := &splitter.Hooks{
//	    OnStatusChanged: func(ctx context.Context, experimentID string, from, to splitter.Status) error {
//	        log.Printf("%s: %s -> %s", experimentID, from, to)
//	        return nil
//	    },
//	}
type Hooks struct {
	// OnAssignment is called after a new assignment is created.
	OnAssignment func(ctx context.Context, assignment Assignment) error

	// OnStatusChanged is called after an experiment changes status.
	OnStatusChanged func(ctx context.Context, experimentID string, from, to Status) error

	// OnCompleted is called once when an experiment reaches a terminal status.
	OnCompleted func(ctx context.Context, experimentID string, results Results) error

	// OnError is called when a collaborator notification fails.
	OnError func(ctx context.Context, err error) error
}
