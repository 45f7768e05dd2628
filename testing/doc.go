// Package testing provides test utilities for the splitter library.
//
// This package offers helpers for setting up test environments, particularly
// embedded NATS servers for the JetStream-backed sinks, plus fixtures for
// experiment definitions and synthetic user populations. It follows Go's
// convention of providing testing utilities in a dedicated package (similar
// to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - CreateJetStreamKV: Convenience wrapper for KV bucket creation
//   - ABDefinition: Two-variant experiment definition
//   - UserIDs: Deterministic synthetic user IDs
//
// Example usage:
//
//	import (
//	    "testing"
//	    splittertest "github.com/arloliu/splitter/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := splittertest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
