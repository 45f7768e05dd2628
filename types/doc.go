// Package types provides core type definitions and interfaces for the splitter library.
//
// This package contains shared types that are used across multiple packages in the
// splitter library. By keeping these types in a separate package, we avoid import cycles
// between the main splitter package and its internal implementations.
//
// Key types:
//   - Definition / Experiment: Experiment input and read-only snapshot
//   - Variant: One treatment arm, including the control
//   - Assignment: Immutable user-to-variant binding
//   - Metrics / Results: Aggregated counters and frozen analysis output
//   - Value: Tagged union for typed variant parameters and segmentation operands
//   - Logger, MetricsCollector, ProfileSource, Store, EventPublisher: Collaborator interfaces
package types
