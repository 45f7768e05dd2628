package types

// Logger is the structured logger used by the engine and its sinks.
//
// Fields are passed as alternating key-value pairs, the same convention as
// log/slog. Records about one experiment carry the "experiment_id" key so
// they can be filtered per experiment.
type Logger interface {
	// Debug logs per-decision detail such as rejected transitions.
	Debug(msg string, keysAndValues ...any)

	// Info logs lifecycle events: experiment creation, status changes, monitor start and stop.
	Info(msg string, keysAndValues ...any)

	// Warn logs degraded collaborators, for example a failed profile lookup
	// or a dropped notification.
	Warn(msg string, keysAndValues ...any)

	// Error logs failures the engine cannot recover from on its own.
	Error(msg string, keysAndValues ...any)

	// Fatal logs and terminates the process. The engine itself never calls it.
	Fatal(msg string, keysAndValues ...any)
}
