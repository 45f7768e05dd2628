package splitter

import (
	"time"

	"github.com/arloliu/splitter/stats"
)

// Option configures an Engine with optional dependencies.
type Option func(*engineOptions)

// engineOptions holds optional Engine configuration.
type engineOptions struct {
	logger    Logger
	metrics   MetricsCollector
	hooks     *Hooks
	profiles  ProfileSource
	store     Store
	publisher EventPublisher
	strategy  AllocationStrategy
	analyzer  *stats.Analyzer
	clock     func() time.Time
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (e.g. splitter.NewSlogLogger(slog.Default()))
//
// Returns:
//   - Option: Functional option for NewEngine
func WithLogger(logger Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewEngine
//
// Example:
//
//	metrics := splitter.NewPrometheusMetrics(prometheus.DefaultRegisterer, "")
//	engine, err := splitter.NewEngine(&cfg, splitter.WithMetrics(metrics))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *engineOptions) {
		o.metrics = metrics
	}
}

// WithHooks sets engine event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions; nil callbacks are ignored
//
// Returns:
//   - Option: Functional option for NewEngine
//
// Example:
//
//	hooks := &splitter.Hooks{
//	    OnCompleted: func(ctx context.Context, id string, r splitter.Results) error {
//	        return notifyTeam(id, r.Recommendation)
//	    },
//	}
//	engine, err := splitter.NewEngine(&cfg, splitter.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *engineOptions) {
		o.hooks = hooks
	}
}

// WithProfileSource sets the source of user profiles for segmentation.
//
// Without a profile source every segmented experiment excludes all users.
func WithProfileSource(src ProfileSource) Option {
	return func(o *engineOptions) {
		o.profiles = src
	}
}

// WithStore sets the persistence collaborator (e.g. sink.NewKV).
func WithStore(store Store) Option {
	return func(o *engineOptions) {
		o.store = store
	}
}

// WithEventPublisher sets the analytics collaborator (e.g. sink.NewPublisher).
func WithEventPublisher(pub EventPublisher) Option {
	return func(o *engineOptions) {
		o.publisher = pub
	}
}

// WithAllocationStrategy replaces the default cumulative-weight allocator.
func WithAllocationStrategy(strategy AllocationStrategy) Option {
	return func(o *engineOptions) {
		o.strategy = strategy
	}
}

// WithAnalyzer replaces the analyzer built from Config.Analysis.
func WithAnalyzer(analyzer *stats.Analyzer) Option {
	return func(o *engineOptions) {
		o.analyzer = analyzer
	}
}

// WithClock sets the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(o *engineOptions) {
		o.clock = now
	}
}
