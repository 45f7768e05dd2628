package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/splitter/internal/logger"
	"github.com/arloliu/splitter/internal/metrics"
	"github.com/arloliu/splitter/types"
)

type countingMetrics struct {
	*metrics.NopMetrics
	dropped atomic.Int32
	failed  atomic.Int32
}

func (m *countingMetrics) RecordNotificationDropped(string) { m.dropped.Add(1) }
func (m *countingMetrics) RecordNotificationFailed(string)  { m.failed.Add(1) }

func newTestDispatcher(t *testing.T, size int, onError func(context.Context, error)) (*Dispatcher, *countingMetrics) {
	t.Helper()

	m := &countingMetrics{NopMetrics: metrics.NewNop()}
	d := New(Config{
		QueueSize: size,
		Logger:    logger.NewTest(t),
		Metrics:   m,
		OnError:   onError,
	})

	return d, m
}

func TestDispatcher_DeliversInOrder(t *testing.T) {
	d, _ := newTestDispatcher(t, 16, nil)
	require.NoError(t, d.Start())

	var mu sync.Mutex
	var got []int
	for i := range 10 {
		require.NoError(t, d.Enqueue(Notification{Kind: "assignment", Deliver: func(context.Context) error {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()

			return nil
		}}))
	}

	require.NoError(t, d.Close(context.Background()))
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d, m := newTestDispatcher(t, 1, nil)

	// Not started: the queue fills and stays full.
	require.NoError(t, d.Enqueue(Notification{Kind: "a"}))
	require.ErrorIs(t, d.Enqueue(Notification{Kind: "b"}), ErrQueueFull)
	require.Equal(t, int32(1), m.dropped.Load())
	require.Equal(t, 1, d.Len())
}

func TestDispatcher_FailuresReported(t *testing.T) {
	errDeliver := errors.New("sink unavailable")

	var reported atomic.Int32
	d, m := newTestDispatcher(t, 8, func(_ context.Context, err error) {
		if errors.Is(err, errDeliver) {
			reported.Add(1)
		}
	})
	require.NoError(t, d.Start())

	require.NoError(t, d.Enqueue(Notification{Kind: "status", Deliver: func(context.Context) error { return errDeliver }}))
	require.NoError(t, d.Enqueue(Notification{Kind: "status", Deliver: func(context.Context) error { panic("boom") }}))
	require.NoError(t, d.Close(context.Background()))

	require.Equal(t, int32(2), m.failed.Load())
	require.Equal(t, int32(1), reported.Load())
}

func TestDispatcher_Lifecycle(t *testing.T) {
	d, _ := newTestDispatcher(t, 8, nil)

	require.NoError(t, d.Start())
	require.ErrorIs(t, d.Start(), types.ErrAlreadyStarted)

	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))
	require.ErrorIs(t, d.Enqueue(Notification{Kind: "a"}), ErrClosed)
	require.ErrorIs(t, d.Start(), ErrClosed)
}

func TestDispatcher_CloseTimeout(t *testing.T) {
	d, _ := newTestDispatcher(t, 8, nil)
	require.NoError(t, d.Start())

	release := make(chan struct{})
	require.NoError(t, d.Enqueue(Notification{Kind: "slow", Deliver: func(context.Context) error {
		<-release
		return nil
	}}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, d.Close(context.Background()))
}
