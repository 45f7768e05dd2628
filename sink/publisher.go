package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/arloliu/splitter/types"
)

// DefaultSubjectPrefix is the subject prefix used when none is configured.
const DefaultSubjectPrefix = "splitter.events"

// Publisher publishes engine events as JSON on NATS subjects.
//
// Subjects have the form <prefix>.<experiment>.<kind>, where the experiment ID
// is base64url-encoded to a single token. Delivery is fire-and-forget: core
// NATS publishes are buffered by the client and never wait for subscribers.
type Publisher struct {
	conn   *nats.Conn
	prefix string
}

var _ types.EventPublisher = (*Publisher)(nil)

// NewPublisher creates a publisher on the given connection.
//
// Parameters:
//   - conn: NATS connection
//   - prefix: Subject prefix (DefaultSubjectPrefix if empty)
//
// Returns:
//   - *Publisher: Ready publisher
func NewPublisher(conn *nats.Conn, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}

	return &Publisher{conn: conn, prefix: prefix}
}

// Prefix returns the subject prefix.
func (p *Publisher) Prefix() string {
	return p.prefix
}

// Publish sends one event.
//
// Returns:
//   - error: types.ErrPublishFailed wrapping the marshal or connection error
func (p *Publisher) Publish(ctx context.Context, ev types.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal %s event: %w", types.ErrPublishFailed, ev.Kind, err)
	}

	subject := EventSubject(p.prefix, ev.ExperimentID, ev.Kind)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("%w: %s: %w", types.ErrPublishFailed, subject, err)
	}

	return nil
}
