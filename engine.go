package splitter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/arloliu/splitter/internal/dispatch"
	"github.com/arloliu/splitter/internal/hash"
	"github.com/arloliu/splitter/internal/hooks"
	"github.com/arloliu/splitter/internal/logger"
	"github.com/arloliu/splitter/internal/metrics"
	"github.com/arloliu/splitter/internal/store"
	"github.com/arloliu/splitter/internal/validation"
	"github.com/arloliu/splitter/segment"
	"github.com/arloliu/splitter/stats"
	"github.com/arloliu/splitter/strategy"
)

// Engine runs experiments: it owns their definitions, assigns users to
// variants, aggregates metrics and drives the lifecycle.
//
// Engine is the main entry point of the splitter library. It handles:
//   - Experiment creation and validation
//   - Deterministic, reproducible user assignment
//   - Lock-free metric aggregation per variant
//   - Lifecycle transitions and frozen results
//   - Background auto-stop monitoring
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - Assignment creation and status transitions are serialized per experiment
//   - Metric recording never takes the experiment lock
//
// Lifecycle:
//   - Create with NewEngine()
//   - Call Start() to run the background monitor (optional)
//   - Call Close() to stop the monitor and flush collaborator notifications
//
// Collaborators (Store, EventPublisher, Hooks) are notified asynchronously and
// never influence in-memory decisions.
type Engine struct {
	cfg Config

	experiments *store.Store
	hasher      *hash.Hasher
	strategy    AllocationStrategy
	analyzer    *stats.Analyzer
	validator   *validation.Validator

	// Optional dependencies
	profiles  ProfileSource
	sink      Store
	publisher EventPublisher
	hooks     Hooks
	metrics   MetricsCollector
	logger    Logger
	now       func() time.Time

	dispatcher *dispatch.Dispatcher

	// Monitor lifecycle
	mu            sync.Mutex
	monitorCancel context.CancelFunc
	monitorDone   chan struct{}
	closed        atomic.Bool
}

// NewEngine creates a new Engine with the provided configuration.
//
// Returns a concrete *Engine struct following the "accept interfaces, return structs" principle.
//
// Parameters:
//   - cfg: Engine configuration; missing values are filled with defaults
//   - opts: Optional dependencies (logger, metrics, hooks, collaborators, clock)
//
// Returns:
//   - *Engine: Initialized engine; the monitor is not running yet
//   - error: ErrInvalidConfig wrapped with details if the configuration is invalid
//
// Example:
//
//	cfg := splitter.DefaultConfig()
//	engine, err := splitter.NewEngine(&cfg, splitter.WithLogger(splitter.NewSlogLogger(nil)))
//	if err != nil {
//	    return err
//	}
//	defer engine.Close(context.Background())
func NewEngine(cfg *Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}

	// Fill in missing configuration values with defaults
	SetDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	options := &engineOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Provide safe defaults for optional dependencies to avoid nil checks everywhere
	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logger.NewNop()
	}

	allocator := options.strategy
	if allocator == nil {
		allocator = strategy.NewCumulativeWeight(strategy.WithLogger(loggerInstance))
	}

	analyzer := options.analyzer
	if analyzer == nil {
		analyzer = stats.NewAnalyzer(
			stats.WithMethod(cfg.Analysis.Method),
			stats.WithRelativeThreshold(cfg.Analysis.RelativeThreshold),
			stats.WithMinParticipants(cfg.Analysis.MinParticipants),
			stats.WithAdoptionThreshold(cfg.Analysis.AdoptionThreshold),
			stats.WithIntervalWidth(cfg.Analysis.IntervalWidth),
		)
	}

	clock := options.clock
	if clock == nil {
		clock = time.Now
	}

	e := &Engine{
		cfg:         *cfg,
		experiments: store.New(),
		hasher:      hash.New(cfg.HashResolution, cfg.HashSeed),
		strategy:    allocator,
		analyzer:    analyzer,
		validator:   validation.New(cfg.WeightTolerance),
		profiles:    options.profiles,
		sink:        options.store,
		publisher:   options.publisher,
		hooks:       hooks.WithDefaults(options.hooks),
		metrics:     metricsCollector,
		logger:      loggerInstance,
		now:         clock,
	}

	e.dispatcher = dispatch.New(dispatch.Config{
		QueueSize:       cfg.EventBufferSize,
		DeliveryTimeout: cfg.DeliveryTimeout,
		Logger:          loggerInstance,
		Metrics:         metricsCollector,
		OnError: func(ctx context.Context, err error) {
			_ = e.hooks.OnError(ctx, err)
		},
	})
	if err := e.dispatcher.Start(); err != nil {
		return nil, fmt.Errorf("failed to start dispatcher: %w", err)
	}

	return e, nil
}

// CreateExperiment validates def and registers it in draft status.
//
// Validation happens before any mutation: a rejected definition leaves the
// engine untouched. Zero configuration values are filled from
// Config.ExperimentDefaults and an empty ID is replaced with a random UUID.
//
// Parameters:
//   - ctx: Context for cancellation
//   - def: Experiment definition
//
// Returns:
//   - Experiment: Snapshot of the created experiment
//   - error: *ValidationError for a malformed or duplicate definition
func (e *Engine) CreateExperiment(ctx context.Context, def Definition) (Experiment, error) {
	if e.closed.Load() {
		return Experiment{}, ErrEngineClosed
	}
	if err := ctx.Err(); err != nil {
		return Experiment{}, err
	}

	def = def.Clone()
	if def.ID == "" {
		def.ID = uuid.NewString()
	}
	applyExperimentDefaults(&def.Configuration, e.cfg.ExperimentDefaults)

	if err := e.validator.Definition(def); err != nil {
		e.logger.Warn("experiment rejected", "experiment_id", def.ID, "error", err)
		return Experiment{}, err
	}

	var predicate *segment.Predicate
	if def.Segmentation != nil {
		p, err := segment.Compile(*def.Segmentation)
		if err != nil {
			return Experiment{}, &ValidationError{ExperimentID: def.ID, Problems: []string{err.Error()}}
		}
		predicate = p
	}

	exp := store.NewExperiment(def, predicate, e.now())
	if !e.experiments.Add(exp) {
		return Experiment{}, &ValidationError{
			ExperimentID: def.ID,
			Problems:     []string{"id: experiment already exists"},
		}
	}

	snap := exp.Snapshot()
	e.logger.Info("experiment created",
		"experiment_id", def.ID,
		"name", def.Name,
		"variants", len(def.Variants),
		"traffic", def.TrafficAllocation,
	)
	e.notifyExperiment(snap)

	return snap, nil
}

// GetExperiment returns a snapshot of the experiment.
//
// Returns:
//   - Experiment: Point-in-time copy including current metrics
//   - error: *NotFoundError for an unknown ID
func (e *Engine) GetExperiment(_ context.Context, experimentID string) (Experiment, error) {
	exp, err := e.lookup(experimentID)
	if err != nil {
		return Experiment{}, err
	}

	return exp.Snapshot(), nil
}

// ListExperiments returns snapshots of all experiments ordered by creation time.
func (e *Engine) ListExperiments(_ context.Context) []Experiment {
	list := e.experiments.List()
	out := make([]Experiment, 0, len(list))
	for _, exp := range list {
		out = append(out, exp.Snapshot())
	}

	return out
}

// GetAssignment returns the user's assignment in an experiment.
//
// Inactive assignments of finished experiments are returned as well.
//
// Returns:
//   - Assignment: The recorded assignment
//   - error: *NotFoundError when the experiment or the assignment does not exist
func (e *Engine) GetAssignment(_ context.Context, userID, experimentID string) (Assignment, error) {
	exp, err := e.lookup(experimentID)
	if err != nil {
		return Assignment{}, err
	}

	a, ok := exp.Assignment(userID)
	if !ok {
		return Assignment{}, &NotFoundError{Kind: "assignment", ID: userID + "/" + experimentID}
	}

	return a, nil
}

// Results returns the frozen results of a finished experiment.
//
// Returns:
//   - Results: Results computed when the experiment entered a terminal status
//   - error: *NotFoundError for an unknown ID, *InvalidStateError while the experiment is not finished
func (e *Engine) Results(_ context.Context, experimentID string) (Results, error) {
	exp, err := e.lookup(experimentID)
	if err != nil {
		return Results{}, err
	}

	exp.Lock()
	defer exp.Unlock()

	r := exp.Results()
	if r == nil {
		status := exp.State().Status
		return Results{}, &InvalidStateError{
			ExperimentID: experimentID,
			Op:           "read results",
			From:         status,
			To:           StatusCompleted,
		}
	}

	return r.Clone(), nil
}

// Analyze computes interim results from the current metrics without changing the experiment.
//
// The recommendation of interim results is always RecommendNone.
//
// Returns:
//   - Results: Interim analysis
//   - error: *NotFoundError for an unknown ID
func (e *Engine) Analyze(_ context.Context, experimentID string) (Results, error) {
	exp, err := e.lookup(experimentID)
	if err != nil {
		return Results{}, err
	}

	def := exp.Definition()
	an := e.analyzer.Analyze(stats.InputsFrom(exp.VariantStates()), def.TargetMetric, def.Configuration.ConfidenceLevel)

	return an.Results(RecommendNone, "", e.now()), nil
}

// Close stops the monitor and flushes pending collaborator notifications.
//
// The engine cannot be used afterwards. It is safe to call Close multiple times.
//
// Parameters:
//   - ctx: Bounds the shutdown; Config.ShutdownTimeout applies when ctx has no deadline
//
// Returns:
//   - error: Shutdown timeout
func (e *Engine) Close(ctx context.Context) error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	if _, ok := ctx.Deadline(); !ok && e.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.ShutdownTimeout)
		defer cancel()
	}

	var shutdownErr error
	if err := e.stopMonitor(ctx); err != nil && !errors.Is(err, ErrNotStarted) {
		shutdownErr = fmt.Errorf("monitor stop failed: %w", err)
	}

	if err := e.dispatcher.Close(ctx); err != nil {
		e.logger.Error("notification drain incomplete", "pending", e.dispatcher.Len(), "error", err)
		if shutdownErr == nil {
			return fmt.Errorf("shutdown timeout: %w", err)
		}

		return fmt.Errorf("shutdown timeout: %w; additional error: %w", err, shutdownErr)
	}

	e.logger.Info("engine closed", "experiments", e.experiments.Len())

	return shutdownErr
}

func (e *Engine) lookup(experimentID string) (*store.Experiment, error) {
	exp, ok := e.experiments.Get(experimentID)
	if !ok {
		return nil, &NotFoundError{Kind: "experiment", ID: experimentID}
	}

	return exp, nil
}
