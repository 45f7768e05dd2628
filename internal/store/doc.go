// Package store is the engine's owned in-memory registry of experiments.
//
// Each experiment carries its own mutex that serializes assignment creation
// and status transitions. Reads on the event path (status, existing
// assignments, variant counters) are lock-free. A per-user index of active
// assignments backs the overlap rule; its locks are always taken after the
// experiment lock.
package store
