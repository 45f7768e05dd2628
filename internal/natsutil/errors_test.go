package natsutil

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
)

func TestIsConnectivityError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout", nats.ErrTimeout, true},
		{"wrapped timeout", fmt.Errorf("publish: %w", nats.ErrTimeout), true},
		{"deadline", context.DeadlineExceeded, true},
		{"no servers", nats.ErrNoServers, true},
		{"disconnected", nats.ErrDisconnected, true},
		{"reconnecting", nats.ErrConnectionReconnecting, true},
		{"no stream response", jetstream.ErrNoStreamResponse, true},
		{"connection refused text", errors.New("dial tcp 127.0.0.1:4222: connect: connection refused"), true},
		{"bad subject", nats.ErrBadSubject, false},
		{"closed", nats.ErrConnectionClosed, false},
		{"key not found", jetstream.ErrKeyNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsConnectivityError(tt.err))
		})
	}
}
