package types

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the splitter library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// The typed errors below match their sentinel through errors.Is, so callers can
// either branch on the kind or inspect the details.
//
// Error Naming Convention:
//   - Use descriptive names with Err prefix
//   - Group by component (Engine, Monitor, Sink, etc.)
//   - Use consistent messages across similar error types

// Error kinds returned by Engine operations.
var (
	// ErrValidation is returned when an experiment definition is malformed.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned for unknown experiment, variant or assignment IDs.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when a lifecycle operation is illegal from the current status.
	ErrInvalidState = errors.New("invalid state")
)

// Engine errors - Public API errors returned by the Engine component.
var (
	// ErrInvalidConfig is returned when the engine configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrAlreadyStarted is returned when Start is called on an already running monitor.
	ErrAlreadyStarted = errors.New("engine already started")

	// ErrNotStarted is returned when Stop is called before Start.
	ErrNotStarted = errors.New("engine not started")

	// ErrEngineClosed is returned when the engine was stopped and cannot be restarted.
	ErrEngineClosed = errors.New("engine closed")
)

// Sink errors - Persistence and event publishing errors.
var (
	// ErrPublishFailed is returned when an event cannot be published.
	ErrPublishFailed = errors.New("failed to publish event")

	// ErrPersistFailed is returned when a record cannot be written to the store.
	ErrPersistFailed = errors.New("failed to persist record")
)

// ValidationError reports every problem found in an experiment definition.
type ValidationError struct {
	// ExperimentID is the ID of the rejected definition, if any.
	ExperimentID string

	// Problems lists human-readable validation failures.
	Problems []string
}

// Error implements error.
func (e *ValidationError) Error() string {
	prefix := "validation failed"
	if e.ExperimentID != "" {
		prefix = fmt.Sprintf("validation failed for experiment %q", e.ExperimentID)
	}
	if len(e.Problems) == 0 {
		return prefix
	}

	return prefix + ": " + strings.Join(e.Problems, "; ")
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError reports an unknown identifier.
type NotFoundError struct {
	// Kind is the kind of object looked up: "experiment", "variant" or "assignment".
	Kind string

	// ID is the identifier that was not found.
	ID string
}

// Error implements error.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InvalidStateError reports a transition or operation that is illegal from the current status.
//
// The experiment is left exactly as it was.
type InvalidStateError struct {
	ExperimentID string
	Op           string
	From         Status
	To           Status
}

// Error implements error.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("experiment %q: cannot %s from %s to %s", e.ExperimentID, e.Op, e.From, e.To)
}

// Is matches ErrInvalidState.
func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}
