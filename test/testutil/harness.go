package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/splitter"
	"github.com/arloliu/splitter/sink"
	splittertest "github.com/arloliu/splitter/testing"
	"github.com/arloliu/splitter/types"
)

// Harness is an engine wired to a JetStream KV store and a NATS event
// publisher on an embedded server, with a subscriber recording every event.
type Harness struct {
	Server     *server.Server
	Conn       *nats.Conn
	Engine     *splitter.Engine
	KV         *sink.KV
	Subscriber *sink.Subscriber

	mu     sync.Mutex
	events []types.Event
}

// NewHarness starts an embedded NATS server and an engine using TestConfig.
//
// The engine is closed automatically when the test completes.
//
// Parameters:
//   - t: Testing context
//   - opts: Extra engine options appended after the sink options
//
// Returns:
//   - *Harness: Running harness
func NewHarness(t *testing.T, opts ...splitter.Option) *Harness {
	t.Helper()

	return NewHarnessWithConfig(t, splitter.TestConfig(), opts...)
}

// NewHarnessWithConfig is NewHarness with an explicit engine configuration.
func NewHarnessWithConfig(t *testing.T, cfg splitter.Config, opts ...splitter.Option) *Harness {
	t.Helper()

	srv, nc := splittertest.StartEmbeddedNATS(t)

	kv, err := sink.NewKV(t.Context(), nc, sink.KVConfig{Bucket: cfg.Sink.Bucket, Storage: jetstream.MemoryStorage})
	require.NoError(t, err)

	h := &Harness{Server: srv, Conn: nc, KV: kv}
	h.Subscriber = sink.NewSubscriber(nc, sink.SubscriberConfig{Prefix: cfg.Sink.SubjectPrefix}, h.record, splittertest.NewTestLogger(t))
	t.Cleanup(func() { _ = h.Subscriber.Close() })

	all := append([]splitter.Option{
		splitter.WithLogger(splittertest.NewTestLogger(t)),
		splitter.WithStore(kv),
		splitter.WithEventPublisher(sink.NewPublisher(nc, cfg.Sink.SubjectPrefix)),
	}, opts...)

	engine, err := splitter.NewEngine(&cfg, all...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close(context.Background()) })
	h.Engine = engine

	return h
}

// CreateAndStart creates def, follows its events and starts it.
func (h *Harness) CreateAndStart(t *testing.T, def splitter.Definition) splitter.Experiment {
	t.Helper()

	exp, err := h.Engine.CreateExperiment(t.Context(), def)
	require.NoError(t, err)
	require.NoError(t, h.Subscriber.Update(t.Context(), []string{exp.ID}, nil))

	exp, err = h.Engine.StartExperiment(t.Context(), exp.ID)
	require.NoError(t, err)

	return exp
}

// Events returns a copy of the received events.
func (h *Harness) Events() []types.Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]types.Event(nil), h.events...)
}

// EventCount returns how many received events have the given kind.
func (h *Harness) EventCount(kind types.EventKind) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for _, ev := range h.events {
		if ev.Kind == kind {
			n++
		}
	}

	return n
}

func (h *Harness) record(ev types.Event) {
	h.mu.Lock()
	h.events = append(h.events, ev)
	h.mu.Unlock()
}
