package types

import "fmt"

// Status represents the lifecycle status of an experiment.
//
// Statuses follow a defined progression:
//
//	StatusDraft → StatusApproved → StatusRunning → {StatusPaused, StatusCompleted, StatusCancelled}
//
// A paused experiment may resume (StatusRunning) or finish (StatusCompleted, StatusCancelled).
// Completed and cancelled are terminal.
type Status int

const (
	// StatusDraft is the initial status: defined but not validated or started.
	StatusDraft Status = iota

	// StatusApproved indicates the definition passed validation and may be started.
	StatusApproved

	// StatusRunning indicates the experiment accepts assignments and metric events.
	StatusRunning

	// StatusPaused indicates new assignments are suspended.
	StatusPaused

	// StatusCompleted indicates the experiment finished and results are frozen.
	StatusCompleted

	// StatusCancelled indicates the experiment was stopped manually and results are frozen.
	StatusCancelled
)

var statusNames = [...]string{"draft", "approved", "running", "paused", "completed", "cancelled"}

// String returns the string representation of the status.
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}

	return statusNames[s]
}

// IsTerminal reports whether no further transitions or mutations are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	idx, err := parseEnum("status", statusNames[:], string(text))
	if err != nil {
		return err
	}
	*s = Status(idx)

	return nil
}

// TargetMetric selects the per-variant value an experiment is judged on.
type TargetMetric int

const (
	// MetricConversionRate is conversions / participants.
	MetricConversionRate TargetMetric = iota

	// MetricRevenuePerUser is total revenue / participants.
	MetricRevenuePerUser

	// MetricSessionDuration is total session duration / session count, in seconds.
	MetricSessionDuration

	// MetricRetentionDay1 is users retained on day 1 / participants.
	MetricRetentionDay1

	// MetricRetentionDay7 is users retained on day 7 / participants.
	MetricRetentionDay7
)

var targetMetricNames = [...]string{
	"conversion_rate",
	"revenue_per_user",
	"session_duration",
	"retention_d1",
	"retention_d7",
}

// String returns the string representation of the metric.
func (m TargetMetric) String() string {
	if m < 0 || int(m) >= len(targetMetricNames) {
		return "unknown"
	}

	return targetMetricNames[m]
}

// Valid reports whether m is a known metric.
func (m TargetMetric) Valid() bool {
	return m >= 0 && int(m) < len(targetMetricNames)
}

// IsProportion reports whether the metric is a per-participant proportion in [0,1].
func (m TargetMetric) IsProportion() bool {
	switch m {
	case MetricConversionRate, MetricRetentionDay1, MetricRetentionDay7:
		return true
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m TargetMetric) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *TargetMetric) UnmarshalText(text []byte) error {
	idx, err := parseEnum("target metric", targetMetricNames[:], string(text))
	if err != nil {
		return err
	}
	*m = TargetMetric(idx)

	return nil
}

// AssignmentMethod records how an assignment was produced.
type AssignmentMethod int

const (
	// MethodDeterministic assignments come from hash bucketing.
	MethodDeterministic AssignmentMethod = iota

	// MethodRandom assignments come from a non-reproducible draw.
	MethodRandom

	// MethodManual assignments were forced by an operator.
	MethodManual
)

var assignmentMethodNames = [...]string{"deterministic", "random", "manual"}

// String returns the string representation of the method.
func (m AssignmentMethod) String() string {
	if m < 0 || int(m) >= len(assignmentMethodNames) {
		return "unknown"
	}

	return assignmentMethodNames[m]
}

// MarshalText implements encoding.TextMarshaler.
func (m AssignmentMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *AssignmentMethod) UnmarshalText(text []byte) error {
	idx, err := parseEnum("assignment method", assignmentMethodNames[:], string(text))
	if err != nil {
		return err
	}
	*m = AssignmentMethod(idx)

	return nil
}

// Significance is the verdict of a statistical analysis.
type Significance int

const (
	// SignificanceUnderpowered means fewer than two variants or no control variant exist.
	SignificanceUnderpowered Significance = iota

	// SignificanceInconclusive means the control value is zero and differences cannot be normalized.
	SignificanceInconclusive

	// SignificanceNotSignificant means no variant cleared the significance rule.
	SignificanceNotSignificant

	// SignificanceSignificant means at least one variant cleared the significance rule.
	SignificanceSignificant
)

var significanceNames = [...]string{"underpowered", "inconclusive", "not_significant", "significant"}

// String returns the string representation of the verdict.
func (s Significance) String() string {
	if s < 0 || int(s) >= len(significanceNames) {
		return "unknown"
	}

	return significanceNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Significance) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Significance) UnmarshalText(text []byte) error {
	idx, err := parseEnum("significance", significanceNames[:], string(text))
	if err != nil {
		return err
	}
	*s = Significance(idx)

	return nil
}

// Recommendation is the action suggested when an experiment finishes.
type Recommendation int

const (
	// RecommendNone is used for interim analyses where no recommendation applies.
	RecommendNone Recommendation = iota

	// RecommendAdoptTreatment suggests rolling out the best treatment.
	RecommendAdoptTreatment

	// RecommendKeepControl suggests keeping the baseline.
	RecommendKeepControl

	// RecommendRunLonger suggests collecting more data.
	RecommendRunLonger

	// RecommendRedesign suggests the experiment cannot answer its question as designed.
	RecommendRedesign
)

var recommendationNames = [...]string{"none", "adopt_treatment", "keep_control", "run_longer", "redesign_experiment"}

// String returns the string representation of the recommendation.
func (r Recommendation) String() string {
	if r < 0 || int(r) >= len(recommendationNames) {
		return "unknown"
	}

	return recommendationNames[r]
}

// MarshalText implements encoding.TextMarshaler.
func (r Recommendation) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Recommendation) UnmarshalText(text []byte) error {
	idx, err := parseEnum("recommendation", recommendationNames[:], string(text))
	if err != nil {
		return err
	}
	*r = Recommendation(idx)

	return nil
}

// ExclusionReason explains why a user received no variant.
type ExclusionReason int

const (
	// ExclusionNone means the user was included.
	ExclusionNone ExclusionReason = iota

	// ExclusionNotRunning means the experiment does not accept assignments in its current status.
	ExclusionNotRunning

	// ExclusionTraffic means the user's traffic draw fell outside the allocation.
	ExclusionTraffic

	// ExclusionSegment means the user's profile is unknown or does not satisfy the segmentation.
	ExclusionSegment

	// ExclusionOverlap means the user is active in another experiment and overlap is disallowed.
	ExclusionOverlap
)

var exclusionReasonNames = [...]string{"none", "not_running", "traffic", "segment", "overlap"}

// String returns the string representation of the reason.
func (r ExclusionReason) String() string {
	if r < 0 || int(r) >= len(exclusionReasonNames) {
		return "unknown"
	}

	return exclusionReasonNames[r]
}

func parseEnum(kind string, names []string, text string) (int, error) {
	for i, name := range names {
		if name == text {
			return i, nil
		}
	}

	return 0, fmt.Errorf("unknown %s %q", kind, text)
}
