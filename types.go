package splitter

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/splitter/internal/logger"
	"github.com/arloliu/splitter/internal/logging"
	"github.com/arloliu/splitter/internal/metrics"
	"github.com/arloliu/splitter/types"
)

// Re-export types from the types package.
//
// This file provides a stable public API for the library's core types and
// interfaces. It uses type aliases to re-export definitions from the `types`
// subpackage, which internal packages depend on without importing the root
// `splitter` package.
type (
	Definition         = types.Definition
	Experiment         = types.Experiment
	Variant            = types.Variant
	VariantState       = types.VariantState
	Configuration      = types.Configuration
	Assignment         = types.Assignment
	Decision           = types.Decision
	Metrics            = types.Metrics
	Results            = types.Results
	VariantResult      = types.VariantResult
	ConfidenceInterval = types.ConfidenceInterval
	Profile            = types.Profile
	Value              = types.Value
	Segmentation       = types.Segmentation
	Criterion          = types.Criterion
	Event              = types.Event
	EventKind          = types.EventKind
)

// Re-export enumerations.
type (
	Status           = types.Status
	TargetMetric     = types.TargetMetric
	AssignmentMethod = types.AssignmentMethod
	Significance     = types.Significance
	Recommendation   = types.Recommendation
	ExclusionReason  = types.ExclusionReason
	Operator         = types.Operator
	Combinator       = types.Combinator
)

// Re-export interfaces from the types package for convenience.
type (
	AllocationStrategy = types.AllocationStrategy
	ProfileSource      = types.ProfileSource
	Store              = types.Store
	EventPublisher     = types.EventPublisher
	MetricsCollector   = types.MetricsCollector
	Logger             = types.Logger
	Hooks              = types.Hooks
)

// Re-export Status constants.
const (
	StatusDraft     = types.StatusDraft
	StatusApproved  = types.StatusApproved
	StatusRunning   = types.StatusRunning
	StatusPaused    = types.StatusPaused
	StatusCompleted = types.StatusCompleted
	StatusCancelled = types.StatusCancelled
)

// Re-export TargetMetric constants.
const (
	MetricConversionRate  = types.MetricConversionRate
	MetricRevenuePerUser  = types.MetricRevenuePerUser
	MetricSessionDuration = types.MetricSessionDuration
	MetricRetentionDay1   = types.MetricRetentionDay1
	MetricRetentionDay7   = types.MetricRetentionDay7
)

// Re-export Significance and Recommendation constants.
const (
	SignificanceSignificant    = types.SignificanceSignificant
	SignificanceNotSignificant = types.SignificanceNotSignificant
	SignificanceInconclusive   = types.SignificanceInconclusive
	SignificanceUnderpowered   = types.SignificanceUnderpowered

	RecommendNone           = types.RecommendNone
	RecommendAdoptTreatment = types.RecommendAdoptTreatment
	RecommendKeepControl    = types.RecommendKeepControl
	RecommendRunLonger      = types.RecommendRunLonger
	RecommendRedesign       = types.RecommendRedesign
)

// Re-export ExclusionReason constants.
const (
	ExclusionNone       = types.ExclusionNone
	ExclusionNotRunning = types.ExclusionNotRunning
	ExclusionTraffic    = types.ExclusionTraffic
	ExclusionSegment    = types.ExclusionSegment
	ExclusionOverlap    = types.ExclusionOverlap
)

// Re-export EventKind constants.
const (
	EventAssignment    = types.EventAssignment
	EventConversion    = types.EventConversion
	EventSession       = types.EventSession
	EventRetention     = types.EventRetention
	EventCustom        = types.EventCustom
	EventStatusChanged = types.EventStatusChanged
	EventCompleted     = types.EventCompleted
)

// Re-export segmentation operators and combinators.
const (
	OpEqual          = types.OpEqual
	OpNotEqual       = types.OpNotEqual
	OpGreaterThan    = types.OpGreaterThan
	OpGreaterOrEqual = types.OpGreaterOrEqual
	OpLessThan       = types.OpLessThan
	OpLessOrEqual    = types.OpLessOrEqual
	OpContains       = types.OpContains

	CombineAnd = types.CombineAnd
	CombineOr  = types.CombineOr
	CombineNot = types.CombineNot
)

// Value constructors.
var (
	String = types.String
	Int    = types.Int
	Float  = types.Float
	Bool   = types.Bool
	List   = types.List
	Map    = types.Map
)

// NewSlogLogger wraps a slog.Logger as a splitter Logger. nil selects slog.Default().
func NewSlogLogger(l *slog.Logger) Logger {
	return logging.NewSlog(l)
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger {
	return logger.NewNop()
}

// NewPrometheusMetrics returns a MetricsCollector that registers its collectors with reg.
//
// Parameters:
//   - reg: Prometheus registerer (prometheus.DefaultRegisterer if nil)
//   - namespace: Metric namespace ("splitter" if empty)
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) MetricsCollector {
	return metrics.NewPrometheus(reg, namespace)
}

// NewNopMetrics returns a MetricsCollector that discards everything.
func NewNopMetrics() MetricsCollector {
	return metrics.NewNop()
}
