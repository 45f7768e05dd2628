package dispatch

import "fmt"

// PanicError wraps a panic raised by a collaborator during delivery.
type PanicError struct {
	Kind  string
	Value any
}

// Error implements error.
func (e *PanicError) Error() string {
	return fmt.Sprintf("%s notification panicked: %v", e.Kind, e.Value)
}
