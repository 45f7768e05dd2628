// Package sink provides persistence and analytics collaborators for the engine.
//
// Implementations:
//   - KV: durable records in a NATS JetStream KeyValue bucket
//   - Publisher: fire-and-forget JSON events on NATS subjects
//   - Subscriber: follows the events of selected experiments
//   - Memory: in-process recorder for tests and simulations
//
// Every sink is safe for concurrent use. The engine calls them from its
// notification dispatcher, never from the assignment path.
package sink
