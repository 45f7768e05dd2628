// Package natsutil holds NATS helpers shared by the sinks.
package natsutil

import (
	"context"
	"errors"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// retryable lists errors after which a sink should back off and try again.
var retryable = []error{
	nats.ErrTimeout,
	nats.ErrNoServers,
	nats.ErrDisconnected,
	nats.ErrConnectionReconnecting,
	jetstream.ErrNoStreamResponse,
	context.DeadlineExceeded,
}

// Socket errors surface from the dialer as plain text.
var retryableText = []string{"connection refused", "i/o timeout"}

// IsConnectivityError reports whether err means the server is unreachable for now.
//
// The event subscriber retries these with backoff. Anything else, such as a
// closed connection or an invalid subject, will not heal by waiting and is
// returned to the caller.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	for _, target := range retryable {
		if errors.Is(err, target) {
			return true
		}
	}

	msg := err.Error()
	for _, text := range retryableText {
		if strings.Contains(msg, text) {
			return true
		}
	}

	return false
}
