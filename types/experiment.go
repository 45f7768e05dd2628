package types

import (
	"maps"
	"slices"
	"time"
)

// Variant is one treatment arm of an experiment, including the control.
//
// A variant is owned by exactly one experiment; its ID only needs to be unique
// within that experiment.
type Variant struct {
	// ID identifies the variant within its experiment.
	ID string `json:"id" yaml:"id" validate:"required"`

	// Name is a human-readable label.
	Name string `json:"name" yaml:"name"`

	// Weight is the fraction of included traffic routed to this variant, in (0,1].
	Weight float64 `json:"weight" yaml:"weight" validate:"gt=0,lte=1"`

	// Parameters is the treatment configuration delivered to assigned users.
	Parameters map[string]Value `json:"parameters,omitempty" yaml:"parameters,omitempty"`

	// IsControl marks the baseline variant.
	IsControl bool `json:"isControl" yaml:"isControl"`
}

// Clone returns a deep copy of the variant.
func (v Variant) Clone() Variant {
	v.Parameters = maps.Clone(v.Parameters)
	return v
}

// Configuration holds per-experiment statistical and operational settings.
//
// Zero values are replaced with engine defaults when the experiment is created.
type Configuration struct {
	// MinSampleSize is the participant count that enables sample-size stopping.
	MinSampleSize int64 `json:"minSampleSize" yaml:"minSampleSize" validate:"gte=0"`

	// MaxDuration bounds how long the experiment runs once started.
	MaxDuration time.Duration `json:"maxDuration" yaml:"maxDuration" validate:"gt=0"`

	// ConfidenceLevel is the confidence level used for intervals and early stopping, in (0,1).
	ConfidenceLevel float64 `json:"confidenceLevel" yaml:"confidenceLevel" validate:"gt=0,lt=1"`

	// StatisticalPower is the desired power, in (0,1). Informational.
	StatisticalPower float64 `json:"statisticalPower" yaml:"statisticalPower" validate:"gt=0,lt=1"`

	// MinimumDetectableEffect is the smallest relative effect of interest. Informational.
	MinimumDetectableEffect float64 `json:"minimumDetectableEffect" yaml:"minimumDetectableEffect" validate:"gte=0"`

	// EarlyStopping enables stopping as soon as significance is reached.
	EarlyStopping bool `json:"earlyStopping" yaml:"earlyStopping"`

	// MonitoringInterval is how often auto-stop conditions are evaluated.
	MonitoringInterval time.Duration `json:"monitoringInterval" yaml:"monitoringInterval" validate:"gt=0"`

	// AllowOverlap permits users already active in other experiments to join this one.
	AllowOverlap bool `json:"allowOverlap" yaml:"allowOverlap"`
}

// Definition describes an experiment to be created.
type Definition struct {
	// ID identifies the experiment. A random UUID is generated when empty.
	ID string `json:"id" yaml:"id"`

	// Name is a human-readable label.
	Name string `json:"name" yaml:"name" validate:"required"`

	// Description is free-form text.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// TargetMetric is the metric the experiment is judged on.
	TargetMetric TargetMetric `json:"targetMetric" yaml:"targetMetric" validate:"target_metric"`

	// TrafficAllocation is the fraction of users included at all, in (0,1].
	TrafficAllocation float64 `json:"trafficAllocation" yaml:"trafficAllocation" validate:"gt=0,lte=1"`

	// Variants lists the treatment arms in allocation order.
	Variants []Variant `json:"variants" yaml:"variants" validate:"required,min=1,dive"`

	// Segmentation optionally restricts eligibility to matching profiles.
	Segmentation *Segmentation `json:"segmentation,omitempty" yaml:"segmentation,omitempty"`

	// Configuration holds statistical and operational settings.
	Configuration Configuration `json:"configuration" yaml:"configuration"`
}

// Clone returns a deep copy of the definition.
func (d Definition) Clone() Definition {
	d.Variants = cloneVariants(d.Variants)
	if d.Segmentation != nil {
		seg := d.Segmentation.Clone()
		d.Segmentation = &seg
	}

	return d
}

// VariantState is a variant together with its aggregated metrics at snapshot time.
type VariantState struct {
	Variant

	// Metrics is a point-in-time copy of the variant's counters.
	Metrics Metrics `json:"metrics"`
}

// Experiment is a read-only snapshot of an experiment.
//
// Snapshots are copies: mutating one never affects the engine.
type Experiment struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Description       string         `json:"description,omitempty"`
	TargetMetric      TargetMetric   `json:"targetMetric"`
	TrafficAllocation float64        `json:"trafficAllocation"`
	Variants          []VariantState `json:"variants"`
	Segmentation      *Segmentation  `json:"segmentation,omitempty"`
	Configuration     Configuration  `json:"configuration"`
	Status            Status         `json:"status"`
	CreatedAt         time.Time      `json:"createdAt"`
	StartedAt         *time.Time     `json:"startedAt,omitempty"`
	EndsAt            *time.Time     `json:"endsAt,omitempty"`
	EndedAt           *time.Time     `json:"endedAt,omitempty"`
	StopReason        string         `json:"stopReason,omitempty"`
	Results           *Results       `json:"results,omitempty"`
}

// Variant returns the variant with the given ID.
func (e Experiment) Variant(id string) (VariantState, bool) {
	for _, v := range e.Variants {
		if v.ID == id {
			return v, true
		}
	}

	return VariantState{}, false
}

// Control returns the first variant marked as control.
func (e Experiment) Control() (VariantState, bool) {
	for _, v := range e.Variants {
		if v.IsControl {
			return v, true
		}
	}

	return VariantState{}, false
}

// TotalParticipants sums participants across all variants.
func (e Experiment) TotalParticipants() int64 {
	var total int64
	for _, v := range e.Variants {
		total += v.Metrics.Participants
	}

	return total
}

// Assignment binds a user to a variant of one experiment.
//
// Within an experiment an assignment is immutable once created; Active turns
// false when the experiment reaches a terminal status.
type Assignment struct {
	UserID       string           `json:"userId"`
	ExperimentID string           `json:"experimentId"`
	VariantID    string           `json:"variantId"`
	AssignedAt   time.Time        `json:"assignedAt"`
	Method       AssignmentMethod `json:"method"`
	Active       bool             `json:"active"`
}

// Decision is the outcome of an assignment request.
//
// Exclusion is a valid outcome, not an error: Included is false and Reason
// explains why.
type Decision struct {
	// Included reports whether the user participates.
	Included bool

	// Variant is the assigned variant when Included is true.
	Variant Variant

	// Reason explains an exclusion.
	Reason ExclusionReason

	// Existing reports whether a previous assignment was reused.
	Existing bool
}

func cloneVariants(variants []Variant) []Variant {
	if variants == nil {
		return nil
	}
	out := slices.Clone(variants)
	for i := range out {
		out[i] = out[i].Clone()
	}

	return out
}
