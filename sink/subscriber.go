package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/arloliu/splitter/internal/natsutil"
	"github.com/arloliu/splitter/types"
)

// SubscriberConfig configures a Subscriber.
type SubscriberConfig struct {
	// Prefix is the subject prefix events are published under (DefaultSubjectPrefix if empty).
	Prefix string

	// MaxRetries is the number of extra subscribe attempts per experiment.
	MaxRetries int

	// RetryBackoff is the initial delay between attempts; later delays grow with jitter.
	RetryBackoff time.Duration
}

// EventHandler receives decoded events. It runs on the NATS client's delivery goroutine.
type EventHandler func(ev types.Event)

// Subscriber follows the events of a changing set of experiments.
//
// It keeps one subscription per experiment on <prefix>.<experiment>.> and
// reconciles that set on every Update call.
type Subscriber struct {
	conn    *nats.Conn
	config  SubscriberConfig
	handler EventHandler
	logger  types.Logger

	// State tracking
	mu            sync.Mutex
	subscriptions map[string]*nats.Subscription // experiment ID -> subscription
}

// NewSubscriber creates a subscriber.
//
// Parameters:
//   - conn: NATS connection
//   - cfg: Subject prefix and retry settings
//   - handler: Called for every decoded event
//   - logger: Receives decode and unsubscribe failures
//
// Returns:
//   - *Subscriber: Subscriber following no experiments yet
//
// Example:
//
//	sub := sink.NewSubscriber(nc, sink.SubscriberConfig{}, func(ev splitter.Event) {
//	    fmt.Println(ev.Kind, ev.UserID)
//	}, logger)
//	err := sub.Update(ctx, []string{expID}, nil)
func NewSubscriber(conn *nats.Conn, cfg SubscriberConfig, handler EventHandler, logger types.Logger) *Subscriber {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultSubjectPrefix
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 50 * time.Millisecond
	}

	return &Subscriber{
		conn:          conn,
		config:        cfg,
		handler:       handler,
		logger:        logger,
		subscriptions: make(map[string]*nats.Subscription),
	}
}

// Update subscribes to added experiments and unsubscribes from removed ones.
//
// Parameters:
//   - ctx: Context for cancellation of retries
//   - added: Experiments to follow
//   - removed: Experiments to stop following
//
// Returns:
//   - error: Subscription failure after all retries; earlier changes are kept
func (s *Subscriber) Update(ctx context.Context, added, removed []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range removed {
		sub, ok := s.subscriptions[id]
		if !ok {
			continue
		}
		if err := sub.Unsubscribe(); err != nil {
			s.logger.Warn("failed to unsubscribe", "experiment_id", id, "error", err)
		}
		delete(s.subscriptions, id)
	}

	for _, id := range added {
		if _, ok := s.subscriptions[id]; ok {
			continue
		}

		sub, err := s.subscribe(ctx, ExperimentSubject(s.config.Prefix, id)+".>")
		if err != nil {
			return fmt.Errorf("failed to follow experiment %s after %d attempts: %w",
				id, s.config.MaxRetries+1, err)
		}
		s.subscriptions[id] = sub
	}

	return nil
}

func (s *Subscriber) subscribe(ctx context.Context, subject string) (*nats.Subscription, error) {
	var lastErr error
	var delay time.Duration
	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sub, err := s.conn.Subscribe(subject, s.deliver)
		if err == nil {
			return sub, nil
		}
		lastErr = err
		if !natsutil.IsConnectivityError(err) {
			return nil, err
		}

		if attempt < s.config.MaxRetries {
			delay = jitterBackoff(delay, s.config.RetryBackoff, 2.0, 10*s.config.RetryBackoff)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, lastErr
}

func (s *Subscriber) deliver(msg *nats.Msg) {
	var ev types.Event
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		s.logger.Warn("dropping undecodable event", "subject", msg.Subject, "error", err)
		return
	}
	s.handler(ev)
}

// Following returns the IDs of followed experiments, sorted.
func (s *Subscriber) Following() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.subscriptions))
	for id := range s.subscriptions {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids
}

// Close unsubscribes from all experiments.
//
// Returns:
//   - error: First unsubscribe failure
func (s *Subscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for id, sub := range s.subscriptions {
		if err := sub.Unsubscribe(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to unsubscribe from experiment %s: %w", id, err)
		}
	}
	s.subscriptions = make(map[string]*nats.Subscription)

	return firstErr
}
