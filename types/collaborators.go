package types

import (
	"context"
	"time"
)

// Store durably records experiments, assignments and results.
//
// The engine treats the store as an append-only sink: writes happen
// asynchronously after in-memory decisions are made, and failures never
// change those decisions.
type Store interface {
	// SaveExperiment records the current snapshot of an experiment.
	SaveExperiment(ctx context.Context, experiment Experiment) error

	// SaveAssignment records a newly created assignment.
	SaveAssignment(ctx context.Context, assignment Assignment) error

	// SaveResults records the frozen results of a finished experiment.
	SaveResults(ctx context.Context, experimentID string, results Results) error
}

// EventKind identifies the type of an analytics event.
type EventKind string

const (
	EventAssignment    EventKind = "assignment"
	EventConversion    EventKind = "conversion"
	EventSession       EventKind = "session"
	EventRetention     EventKind = "retention"
	EventCustom        EventKind = "custom"
	EventStatusChanged EventKind = "status"
	EventCompleted     EventKind = "completed"
)

// Event is a notification emitted to the analytics collaborator.
type Event struct {
	Kind         EventKind     `json:"kind"`
	ExperimentID string        `json:"experimentId"`
	UserID       string        `json:"userId,omitempty"`
	VariantID    string        `json:"variantId,omitempty"`
	Value        float64       `json:"value,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	Day          int           `json:"day,omitempty"`
	Name         string        `json:"name,omitempty"`
	From         *Status       `json:"from,omitempty"`
	To           *Status       `json:"to,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

// EventPublisher receives fire-and-forget engine events for downstream reporting.
type EventPublisher interface {
	// Publish delivers one event.
	Publish(ctx context.Context, event Event) error
}
