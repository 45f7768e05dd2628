package splitter

import "github.com/arloliu/splitter/types"

// Sentinel errors returned by the Engine.
//
// Typed errors (*ValidationError, *NotFoundError, *InvalidStateError) match
// their sentinel with errors.Is and carry details via errors.As.
var (
	// ErrValidation matches *ValidationError: a malformed experiment definition.
	ErrValidation = types.ErrValidation

	// ErrNotFound matches *NotFoundError: an unknown experiment or assignment.
	ErrNotFound = types.ErrNotFound

	// ErrInvalidState matches *InvalidStateError: an operation illegal in the current status.
	ErrInvalidState = types.ErrInvalidState

	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrAlreadyStarted is returned when Start is called on a running monitor.
	ErrAlreadyStarted = types.ErrAlreadyStarted

	// ErrNotStarted is returned when Stop is called before Start.
	ErrNotStarted = types.ErrNotStarted

	// ErrEngineClosed is returned by operations on a closed engine.
	ErrEngineClosed = types.ErrEngineClosed
)

// Typed errors.
type (
	ValidationError   = types.ValidationError
	NotFoundError     = types.NotFoundError
	InvalidStateError = types.InvalidStateError
)
