package splitter

import (
	"context"
	"time"

	"github.com/arloliu/splitter/internal/lifecycle"
	"github.com/arloliu/splitter/internal/store"
	"github.com/arloliu/splitter/stats"
	"github.com/arloliu/splitter/types"
)

// Start runs the background monitor that evaluates auto-stop conditions.
//
// The monitor wakes every Config.MonitorInterval and evaluates each running
// experiment whose own MonitoringInterval has elapsed since its last
// evaluation. Without a running monitor experiments only stop manually or
// through CheckNow.
//
// Parameters:
//   - ctx: Only checked for cancellation; the monitor runs until Stop or Close
//
// Returns:
//   - error: ErrAlreadyStarted if running, ErrEngineClosed after Close
func (e *Engine) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed.Load() {
		return ErrEngineClosed
	}
	if e.monitorCancel != nil {
		return ErrAlreadyStarted
	}

	monitorCtx, cancel := context.WithCancel(context.Background())
	e.monitorCancel = cancel
	e.monitorDone = make(chan struct{})

	go e.monitorLoop(monitorCtx, e.monitorDone)

	e.logger.Info("monitor started", "interval", e.cfg.MonitorInterval)

	return nil
}

// Stop stops the background monitor. The engine stays usable and Start may be called again.
//
// Parameters:
//   - ctx: Bounds the wait for the monitor goroutine
//
// Returns:
//   - error: ErrNotStarted if the monitor is not running, ctx.Err() on timeout
func (e *Engine) Stop(ctx context.Context) error {
	return e.stopMonitor(ctx)
}

// CheckNow runs one monitor pass synchronously.
//
// Returns:
//   - []string: IDs of experiments stopped by this pass
//   - error: ErrEngineClosed after Close, or ctx.Err()
func (e *Engine) CheckNow(ctx context.Context) ([]string, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return e.checkAll(ctx), nil
}

func (e *Engine) stopMonitor(ctx context.Context) error {
	e.mu.Lock()
	cancel, done := e.monitorCancel, e.monitorDone
	e.monitorCancel, e.monitorDone = nil, nil
	e.mu.Unlock()

	if cancel == nil {
		return ErrNotStarted
	}
	cancel()

	select {
	case <-done:
		e.logger.Info("monitor stopped")
		return nil
	case <-ctx.Done():
		e.logger.Error("monitor stop timeout exceeded")
		return ctx.Err()
	}
}

func (e *Engine) monitorLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(e.cfg.MonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.checkAll(ctx)
		}
	}
}

// checkAll evaluates every running experiment that is due.
func (e *Engine) checkAll(ctx context.Context) []string {
	start := time.Now()
	var stopped []string
	evaluated := 0

	for _, exp := range e.experiments.List() {
		if ctx.Err() != nil {
			break
		}
		if exp.Status() != StatusRunning {
			continue
		}

		ran, ok := e.evaluate(exp)
		if ran {
			evaluated++
		}
		if ok {
			stopped = append(stopped, exp.ID())
		}
	}

	e.metrics.RecordMonitorPass(time.Since(start).Seconds(), evaluated)
	if len(stopped) > 0 {
		e.logger.Debug("monitor pass finished", "evaluated", evaluated, "stopped", len(stopped))
	}

	return stopped
}

// evaluate checks the auto-stop conditions of one experiment and completes it
// when one fires. The experiment lock is held for the whole decision so no
// assignment is admitted while the experiment is finalized.
//
// Returns:
//   - bool: true when the experiment was due and evaluated
//   - bool: true when the experiment was completed
func (e *Engine) evaluate(exp *store.Experiment) (bool, bool) {
	exp.Lock()

	state := exp.State()
	def := exp.Definition()
	cfg := def.Configuration
	now := e.now()
	if state.Status != StatusRunning || !lifecycle.Due(exp.LastEvaluated(), cfg.MonitoringInterval, now) {
		exp.Unlock()
		return false, false
	}
	exp.MarkEvaluated(now)

	reason, stop := lifecycle.EvaluateAutoStop(lifecycle.Check{
		Now:                now,
		StartedAt:          state.StartedAt,
		EndsAt:             state.EndsAt,
		Participants:       exp.Participants(),
		MinSampleSize:      cfg.MinSampleSize,
		MonitoringInterval: cfg.MonitoringInterval,
		MinElapsedPeriods:  e.cfg.MinElapsedPeriods,
		EarlyStopping:      cfg.EarlyStopping,
		ConfidenceLevel:    cfg.ConfidenceLevel,
		Analyze: func() (types.Significance, float64) {
			an := e.analyzer.Analyze(stats.InputsFrom(exp.VariantStates()), def.TargetMetric, cfg.ConfidenceLevel)
			return an.Significance, an.Confidence
		},
	})
	if !stop {
		exp.Unlock()
		return true, false
	}

	changes, results, err := e.applyLocked(exp, "auto-stop", reason, []Status{StatusCompleted})
	if err != nil {
		exp.Unlock()
		e.logger.Error("auto-stop failed", "experiment_id", exp.ID(), "reason", reason, "error", err)

		return true, false
	}
	snap := exp.SnapshotLocked()
	exp.Unlock()

	e.metrics.RecordAutoStop(exp.ID(), reason)
	e.report(snap, changes, results)

	return true, true
}
