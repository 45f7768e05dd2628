package sink

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	splittertest "github.com/arloliu/splitter/testing"
	"github.com/arloliu/splitter/types"
)

func TestPublisher_Publish(t *testing.T) {
	_, nc := splittertest.StartEmbeddedNATS(t)

	pub := NewPublisher(nc, "")
	require.Equal(t, DefaultSubjectPrefix, pub.Prefix())

	sub, err := nc.SubscribeSync(DefaultSubjectPrefix + ".>")
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	ev := types.Event{
		Kind:         types.EventConversion,
		ExperimentID: "checkout",
		UserID:       "user-1",
		VariantID:    "treatment",
		Value:        12.5,
		Timestamp:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, pub.Publish(t.Context(), ev))

	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)
	require.Equal(t, EventSubject(DefaultSubjectPrefix, "checkout", types.EventConversion), msg.Subject)

	var got types.Event
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	require.Equal(t, ev.UserID, got.UserID)
	require.Equal(t, ev.VariantID, got.VariantID)
	require.InDelta(t, ev.Value, got.Value, 1e-9)
}

func TestPublisher_CancelledContext(t *testing.T) {
	_, nc := splittertest.StartEmbeddedNATS(t)
	pub := NewPublisher(nc, "events")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	require.ErrorIs(t, pub.Publish(ctx, types.Event{Kind: types.EventSession, ExperimentID: "x"}), context.Canceled)
}

func TestPublisher_ClosedConnection(t *testing.T) {
	_, nc := splittertest.StartEmbeddedNATS(t)
	pub := NewPublisher(nc, "events")
	nc.Close()

	err := pub.Publish(t.Context(), types.Event{Kind: types.EventSession, ExperimentID: "x"})
	require.ErrorIs(t, err, types.ErrPublishFailed)
}

func TestSubscriber_FollowsExperiments(t *testing.T) {
	_, nc := splittertest.StartEmbeddedNATS(t)
	ctx := t.Context()

	var mu sync.Mutex
	var received []types.Event
	sub := NewSubscriber(nc, SubscriberConfig{Prefix: "events"}, func(ev types.Event) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, ev)
	}, splittertest.NewTestLogger(t))
	t.Cleanup(func() { _ = sub.Close() })

	require.NoError(t, sub.Update(ctx, []string{"a", "b"}, nil))
	require.Equal(t, []string{"a", "b"}, sub.Following())
	require.NoError(t, nc.Flush())

	pub := NewPublisher(nc, "events")
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, pub.Publish(ctx, types.Event{Kind: types.EventAssignment, ExperimentID: id}))
	}

	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(received)
	}
	require.Eventually(t, func() bool { return count() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, sub.Update(ctx, []string{"c"}, []string{"a"}))
	require.Equal(t, []string{"b", "c"}, sub.Following())
	require.NoError(t, nc.Flush())

	for _, id := range []string{"a", "c"} {
		require.NoError(t, pub.Publish(ctx, types.Event{Kind: types.EventConversion, ExperimentID: id}))
	}
	require.Eventually(t, func() bool { return count() == 3 }, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	require.Equal(t, "c", received[2].ExperimentID)
	mu.Unlock()

	require.NoError(t, sub.Close())
	require.Empty(t, sub.Following())
}

func TestSubscriber_CancelledContext(t *testing.T) {
	_, nc := splittertest.StartEmbeddedNATS(t)
	sub := NewSubscriber(nc, SubscriberConfig{MaxRetries: 2}, func(types.Event) {}, splittertest.NewTestLogger(t))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	require.ErrorIs(t, sub.Update(ctx, []string{"a"}, nil), context.Canceled)
	require.Empty(t, sub.Following())
}

func TestSubscriber_ClosedConnectionFailsFast(t *testing.T) {
	_, nc := splittertest.StartEmbeddedNATS(t)
	sub := NewSubscriber(nc, SubscriberConfig{MaxRetries: 5, RetryBackoff: time.Second}, func(types.Event) {}, splittertest.NewTestLogger(t))
	nc.Close()

	start := time.Now()
	err := sub.Update(t.Context(), []string{"a"}, nil)

	require.ErrorIs(t, err, nats.ErrConnectionClosed)
	require.Less(t, time.Since(start), time.Second)
	require.Empty(t, sub.Following())
}

func TestJitterBackoff(t *testing.T) {
	base := 10 * time.Millisecond
	capDur := 100 * time.Millisecond

	require.Equal(t, base, jitterBackoff(0, base, 2, capDur))
	require.Equal(t, 5*time.Millisecond, jitterBackoff(0, base, 2, 5*time.Millisecond))

	prev := base
	for range 50 {
		next := jitterBackoff(prev, base, 2, capDur)
		require.GreaterOrEqual(t, next, base)
		require.LessOrEqual(t, next, capDur)
		prev = next
	}
}
