package types

import (
	"slices"
	"time"
)

// ConfidenceInterval is a symmetric interval around a metric value.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Level float64 `json:"level"`
}

// VariantResult is the per-variant outcome of an analysis.
type VariantResult struct {
	VariantID      string             `json:"variantId"`
	Name           string             `json:"name"`
	IsControl      bool               `json:"isControl"`
	Participants   int64              `json:"participants"`
	Value          float64            `json:"value"`
	ImprovementPct float64            `json:"improvementPct"`
	Interval       ConfidenceInterval `json:"interval"`
}

// Results is the frozen outcome of a finished experiment.
//
// Results are produced exactly once, when the experiment enters a terminal
// status, and never change afterwards.
type Results struct {
	TotalParticipants int64           `json:"totalParticipants"`
	Variants          []VariantResult `json:"variants"`
	Significance      Significance    `json:"significance"`
	Confidence        float64         `json:"confidence"`
	Recommendation    Recommendation  `json:"recommendation"`
	Summary           string          `json:"summary"`
	StopReason        string          `json:"stopReason"`
	CompletedAt       time.Time       `json:"completedAt"`
}

// Clone returns a deep copy.
func (r Results) Clone() Results {
	r.Variants = slices.Clone(r.Variants)
	return r
}

// Variant returns the result for the given variant ID.
func (r Results) Variant(id string) (VariantResult, bool) {
	for _, v := range r.Variants {
		if v.VariantID == id {
			return v, true
		}
	}

	return VariantResult{}, false
}
