package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/arloliu/splitter/types"
)

// DefaultQueueSize is the queue capacity used when none is configured.
const DefaultQueueSize = 1024

// DefaultDeliveryTimeout bounds a single delivery.
const DefaultDeliveryTimeout = 5 * time.Second

// ErrClosed is returned by Enqueue after Close.
var ErrClosed = errors.New("dispatcher closed")

// ErrQueueFull is returned by Enqueue when the queue has no free slot.
var ErrQueueFull = errors.New("dispatch queue full")

// Notification is one unit of collaborator work.
type Notification struct {
	// Kind labels the notification in logs and metrics (e.g. "assignment").
	Kind string

	// ExperimentID is included in logs.
	ExperimentID string

	// Deliver performs the delivery. It should honor ctx.
	Deliver func(ctx context.Context) error
}

// Config configures a Dispatcher.
type Config struct {
	QueueSize       int
	DeliveryTimeout time.Duration
	Logger          types.Logger
	Metrics         types.DispatchMetrics

	// OnError is called with every delivery error. May be nil.
	OnError func(ctx context.Context, err error)
}

// Dispatcher delivers notifications on a single background goroutine.
type Dispatcher struct {
	queue   chan Notification
	timeout time.Duration
	logger  types.Logger
	metrics types.DispatchMetrics
	onError func(ctx context.Context, err error)

	mu      sync.RWMutex
	started bool
	closed  bool
	doneCh  chan struct{}
}

// New creates a dispatcher. Call Start before enqueueing.
//
// Parameters:
//   - cfg: Queue size, delivery timeout, logger, metrics and error callback
//
// Returns:
//   - *Dispatcher: Dispatcher in the stopped state
func New(cfg Config) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = DefaultDeliveryTimeout
	}

	return &Dispatcher{
		queue:   make(chan Notification, cfg.QueueSize),
		timeout: cfg.DeliveryTimeout,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		onError: cfg.OnError,
		doneCh:  make(chan struct{}),
	}
}

// Start launches the worker goroutine.
//
// Returns:
//   - error: types.ErrAlreadyStarted on a second call, ErrClosed after Close
func (d *Dispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if d.started {
		return types.ErrAlreadyStarted
	}

	d.started = true
	go d.run()

	return nil
}

// Enqueue schedules a notification without blocking.
//
// Returns:
//   - error: ErrQueueFull when dropped, ErrClosed after Close
func (d *Dispatcher) Enqueue(n Notification) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrClosed
	}

	select {
	case d.queue <- n:
		return nil
	default:
		d.metrics.RecordNotificationDropped(n.Kind)
		d.logger.Warn("notification dropped, queue full",
			"kind", n.Kind,
			"experiment_id", n.ExperimentID,
			"queue_size", cap(d.queue),
		)

		return ErrQueueFull
	}
}

// Len returns the number of queued notifications.
func (d *Dispatcher) Len() int {
	return len(d.queue)
}

// Close stops accepting notifications and waits for the queue to drain.
//
// It is safe to call Close multiple times.
//
// Parameters:
//   - ctx: Bounds the wait; remaining notifications keep draining in the background
//
// Returns:
//   - error: ctx.Err() when the drain did not finish in time
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	started := d.started
	d.mu.Unlock()

	if !started {
		return nil
	}

	select {
	case <-d.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.doneCh)

	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n Notification) {
	if n.Deliver == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	err := d.safeDeliver(ctx, n)
	if err == nil {
		return
	}

	d.metrics.RecordNotificationFailed(n.Kind)
	d.logger.Warn("notification delivery failed",
		"kind", n.Kind,
		"experiment_id", n.ExperimentID,
		"error", err,
	)
	if d.onError != nil {
		d.onError(ctx, err)
	}
}

func (d *Dispatcher) safeDeliver(ctx context.Context, n Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Kind: n.Kind, Value: r}
		}
	}()

	return n.Deliver(ctx)
}
