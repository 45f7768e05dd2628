// Package testutil provides shared helpers for integration and stress tests.
//
// Examples of utilities that belong here:
//   - Harnesses wiring an engine to NATS-backed sinks
//   - Traffic drivers that send synthetic users through experiments
//   - Resource checks for goroutine and memory leaks
//
// Note: For NATS server setup, use the github.com/arloliu/splitter/testing package.
// This package is specifically for multi-component scenarios.
package testutil
