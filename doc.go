// Package splitter provides a Go library for running A/B experiments with
// deterministic user assignment, lock-free metric aggregation and automatic
// stopping.
//
// Splitter keeps all experiment state in memory. Persistence and analytics
// are pluggable collaborators that are notified asynchronously and never
// influence assignment decisions.
//
// # Quick Start
//
// Basic usage with default settings:
//
//	import "github.com/arloliu/splitter"
//
//	cfg := splitter.DefaultConfig()
//	engine, err := splitter.NewEngine(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close(context.Background())
//
//	exp, err := engine.CreateExperiment(ctx, splitter.Definition{
//	    Name:              "checkout-button",
//	    TargetMetric:      splitter.MetricConversionRate,
//	    TrafficAllocation: 1.0,
//	    Variants: []splitter.Variant{
//	        {ID: "control", Weight: 0.5, IsControl: true},
//	        {ID: "green", Weight: 0.5},
//	    },
//	})
//	_, err = engine.StartExperiment(ctx, exp.ID)
//
//	variant, ok, err := engine.GetVariant(ctx, userID, exp.ID)
//	if ok {
//	    render(variant.Parameters)
//	}
//	_ = engine.RecordConversion(ctx, userID, exp.ID, 19.99)
//
// # Key Features
//
//   - Deterministic Assignment: xxh3 draws on (user, experiment) make every decision reproducible
//   - Traffic Gating and Segmentation: exclude users by traffic share or profile predicates
//   - Overlap Control: keep users in at most one experiment unless AllowOverlap is set
//   - Lock-Free Metrics: conversions, revenue, sessions, retention and custom metrics per variant
//   - Automatic Stopping: deadline, sample size and optional early stopping on significance
//
// # Architecture
//
// Experiments progress through a state machine:
//
//	draft → approved → running ⇄ paused → completed | cancelled
//
// Completed and cancelled are terminal: results are computed once and frozen,
// and assignments become inactive. The background monitor started with
// Engine.Start is the only component that completes experiments on its own.
//
// # Advanced Usage
//
// Persisting to NATS JetStream and publishing analytics events:
//
//	import (
//	    "github.com/arloliu/splitter"
//	    "github.com/arloliu/splitter/sink"
//	)
//
//	kv, err := sink.NewKV(ctx, nc, sink.KVConfig{Bucket: "splitter"})
//	pub := sink.NewPublisher(nc, "splitter.events")
//
//	engine, err := splitter.NewEngine(&cfg,
//	    splitter.WithStore(kv),
//	    splitter.WithEventPublisher(pub),
//	    splitter.WithMetrics(splitter.NewPrometheusMetrics(prometheus.DefaultRegisterer, "")),
//	)
//
// See the examples/ directory for complete working examples.
package splitter
