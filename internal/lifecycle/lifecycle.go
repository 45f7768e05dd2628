package lifecycle

import (
	"time"

	"github.com/arloliu/splitter/types"
)

// Automatic stop reasons, in evaluation order.
const (
	ReasonDeadline   = "automatic: deadline"
	ReasonSampleSize = "automatic: sample size"
	ReasonEarlyStop  = "early: significance reached"
)

// DefaultMinElapsedPeriods is the number of monitoring intervals that must
// elapse before the sample-size condition can stop an experiment.
const DefaultMinElapsedPeriods = 7

var transitions = map[types.Status][]types.Status{
	types.StatusDraft:    {types.StatusApproved},
	types.StatusApproved: {types.StatusRunning},
	types.StatusRunning:  {types.StatusPaused, types.StatusCompleted, types.StatusCancelled},
	types.StatusPaused:   {types.StatusRunning, types.StatusCompleted, types.StatusCancelled},
}

// CanTransition reports whether from -> to is a legal transition.
func CanTransition(from, to types.Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}

	return false
}

// State is the mutable lifecycle portion of an experiment.
type State struct {
	Status     types.Status
	StartedAt  *time.Time
	EndsAt     *time.Time
	EndedAt    *time.Time
	StopReason string
}

// Transition describes one requested status change.
type Transition struct {
	// ExperimentID is used for error reporting.
	ExperimentID string

	// Op names the caller-facing operation ("start", "stop", ...).
	Op string

	// To is the requested status.
	To types.Status

	// At is the time of the change.
	At time.Time

	// MaxDuration sets the end date when entering running.
	MaxDuration time.Duration

	// Reason is recorded when entering a terminal status.
	Reason string
}

// Apply performs a transition on s.
//
// Entering running, including a resume, sets the start time to At and the end date to
// At + MaxDuration. Entering a terminal status records the end time and reason.
//
// Parameters:
//   - s: State to mutate
//   - tr: Requested transition
//
// Returns:
//   - error: *types.InvalidStateError when the transition is illegal; s is unchanged
func Apply(s *State, tr Transition) error {
	if !CanTransition(s.Status, tr.To) {
		return &types.InvalidStateError{
			ExperimentID: tr.ExperimentID,
			Op:           tr.Op,
			From:         s.Status,
			To:           tr.To,
		}
	}

	at := tr.At
	switch {
	case tr.To == types.StatusRunning:
		s.StartedAt = &at
		ends := at.Add(tr.MaxDuration)
		s.EndsAt = &ends
	case tr.To.IsTerminal():
		s.EndedAt = &at
		s.StopReason = tr.Reason
	}
	s.Status = tr.To

	return nil
}

// Check is the input to EvaluateAutoStop.
type Check struct {
	Now                time.Time
	StartedAt          *time.Time
	EndsAt             *time.Time
	Participants       int64
	MinSampleSize      int64
	MonitoringInterval time.Duration
	MinElapsedPeriods  int
	EarlyStopping      bool
	ConfidenceLevel    float64

	// Analyze returns the current verdict and confidence. It is only called
	// when early stopping is enabled and the earlier conditions did not fire.
	Analyze func() (types.Significance, float64)
}

// EvaluateAutoStop decides whether a running experiment should stop.
//
// Conditions, in order:
//  1. Now is at or past the end date: ReasonDeadline
//  2. Participants reached MinSampleSize and at least MinElapsedPeriods
//     monitoring intervals passed since start: ReasonSampleSize
//  3. Early stopping is enabled and the analysis is significant with
//     confidence at or above the configured level: ReasonEarlyStop
//
// Returns:
//   - string: Stop reason
//   - bool: true when the experiment should stop
func EvaluateAutoStop(c Check) (string, bool) {
	if c.EndsAt != nil && !c.Now.Before(*c.EndsAt) {
		return ReasonDeadline, true
	}

	periods := c.MinElapsedPeriods
	if periods <= 0 {
		periods = DefaultMinElapsedPeriods
	}
	if c.StartedAt != nil && c.Participants >= c.MinSampleSize &&
		c.Now.Sub(*c.StartedAt) >= time.Duration(periods)*c.MonitoringInterval {
		return ReasonSampleSize, true
	}

	if c.EarlyStopping && c.Analyze != nil {
		sig, confidence := c.Analyze()
		if sig == types.SignificanceSignificant && confidence >= c.ConfidenceLevel {
			return ReasonEarlyStop, true
		}
	}

	return "", false
}

// Due reports whether an experiment evaluated at last should be evaluated again at now.
func Due(last time.Time, interval time.Duration, now time.Time) bool {
	return last.IsZero() || now.Sub(last) >= interval
}
