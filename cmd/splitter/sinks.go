package main

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/nats-io/nats.go"

	"github.com/arloliu/splitter"
	"github.com/arloliu/splitter/sink"
	"github.com/arloliu/splitter/types"
)

// simulationSinks holds the store and publisher handed to the engine, plus
// the optional NATS event follower.
type simulationSinks struct {
	store     types.Store
	publisher types.EventPublisher

	conn       *nats.Conn
	subscriber *sink.Subscriber
	received   atomic.Int64
}

// openSinks wires the NATS JetStream sinks when a URL is configured and an
// in-memory sink otherwise.
func openSinks(ctx context.Context, cfg splitter.Config, follow bool, logger splitter.Logger) (*simulationSinks, error) {
	s := &simulationSinks{}

	if cfg.Sink.URL == "" {
		if follow {
			return nil, errors.New("--follow requires a NATS URL")
		}
		mem := sink.NewMemory()
		s.store, s.publisher = mem, mem

		return s, nil
	}

	conn, err := nats.Connect(cfg.Sink.URL, nats.Name("splitter-simulate"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	kv, err := sink.NewKV(ctx, conn, sink.KVConfig{Bucket: cfg.Sink.Bucket})
	if err != nil {
		conn.Close()
		return nil, err
	}

	s.conn = conn
	s.store = kv
	s.publisher = sink.NewPublisher(conn, cfg.Sink.SubjectPrefix)

	if follow {
		s.subscriber = sink.NewSubscriber(conn, sink.SubscriberConfig{Prefix: cfg.Sink.SubjectPrefix, MaxRetries: 3},
			func(types.Event) { s.received.Add(1) }, logger)
	}

	logger.Info("NATS sinks enabled", "url", cfg.Sink.URL, "bucket", cfg.Sink.Bucket, "subject_prefix", cfg.Sink.SubjectPrefix)

	return s, nil
}

// follow subscribes to the events of the given experiments when following is enabled.
func (s *simulationSinks) follow(ctx context.Context, experimentIDs []string) error {
	if s.subscriber == nil {
		return nil
	}

	return s.subscriber.Update(ctx, experimentIDs, nil)
}

func (s *simulationSinks) close() {
	if s.subscriber != nil {
		_ = s.subscriber.Close()
	}
	if s.conn != nil {
		_ = s.conn.Drain()
	}
}
