package testing

import (
	"fmt"
	"time"

	"github.com/arloliu/splitter/types"
)

// ABDefinition returns a running-ready two-variant definition.
//
// The control variant is "control" with the given weight; "treatment" takes
// the remainder. Traffic allocation is 1 and the target metric is conversion rate.
//
// Parameters:
//   - id: Experiment ID
//   - controlWeight: Weight of the control variant, in (0,1)
//
// Returns:
//   - types.Definition: Definition ready for CreateExperiment
func ABDefinition(id string, controlWeight float64) types.Definition {
	return types.Definition{
		ID:                id,
		Name:              "A/B " + id,
		TargetMetric:      types.MetricConversionRate,
		TrafficAllocation: 1.0,
		Variants: []types.Variant{
			{ID: "control", Name: "Control", Weight: controlWeight, IsControl: true},
			{ID: "treatment", Name: "Treatment", Weight: 1 - controlWeight},
		},
		Configuration: types.Configuration{
			MinSampleSize:      1000,
			MaxDuration:        14 * 24 * time.Hour,
			ConfidenceLevel:    0.95,
			StatisticalPower:   0.8,
			MonitoringInterval: time.Hour,
		},
	}
}

// UserIDs returns n deterministic synthetic user IDs ("user-000000", ...).
func UserIDs(n int) []string {
	ids := make([]string, n)
	for i := range n {
		ids[i] = fmt.Sprintf("user-%06d", i)
	}

	return ids
}
