package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/splitter/types"
)

func validDefinition() types.Definition {
	return types.Definition{
		ID:                "checkout-button",
		Name:              "Checkout button color",
		TargetMetric:      types.MetricConversionRate,
		TrafficAllocation: 1.0,
		Variants: []types.Variant{
			{ID: "control", Name: "Blue", Weight: 0.5, IsControl: true},
			{ID: "treatment", Name: "Green", Weight: 0.5},
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

func problems(t *testing.T, err error) []string {
	t.Helper()

	var vErr *types.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.True(t, errors.Is(err, types.ErrValidation))

	return vErr.Problems
}

func containsProblem(list []string, substr string) bool {
	for _, p := range list {
		if strings.Contains(p, substr) {
			return true
		}
	}

	return false
}

func TestDefinition_Valid(t *testing.T) {
	require.NoError(t, New(0).Definition(validDefinition()))
}

func TestDefinition_WeightTolerance(t *testing.T) {
	def := validDefinition()
	def.Variants[0].Weight = 0.505
	require.NoError(t, New(0).Definition(def))

	def.Variants[0].Weight = 0.3
	list := problems(t, New(0).Definition(def))
	require.True(t, containsProblem(list, "weights sum to 0.8000"), list)
}

func TestDefinition_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *types.Definition)
		problem string
	}{
		{"no control", func(d *types.Definition) { d.Variants[0].IsControl = false }, "no control variant"},
		{"zero traffic", func(d *types.Definition) { d.TrafficAllocation = 0 }, "TrafficAllocation"},
		{"traffic above one", func(d *types.Definition) { d.TrafficAllocation = 1.5 }, "TrafficAllocation"},
		{"no variants", func(d *types.Definition) { d.Variants = nil }, "Variants"},
		{"empty variant id", func(d *types.Definition) { d.Variants[1].ID = "" }, "ID: is required"},
		{"duplicate variant id", func(d *types.Definition) { d.Variants[1].ID = "control" }, "duplicate variant id"},
		{"missing name", func(d *types.Definition) { d.Name = "" }, "Name: is required"},
		{"zero weight", func(d *types.Definition) { d.Variants[1].Weight = 0 }, "Weight"},
		{"unknown metric", func(d *types.Definition) { d.TargetMetric = types.TargetMetric(42) }, "unknown target metric"},
		{"confidence out of range", func(d *types.Definition) { d.Configuration.ConfidenceLevel = 1 }, "ConfidenceLevel"},
		{"bad segmentation", func(d *types.Definition) {
			d.Segmentation = &types.Segmentation{
				Criteria: []types.Criterion{{Attribute: "country", Operator: types.Operator(9), Value: types.String("DE")}},
			}
		}, "unknown operator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := validDefinition()
			tt.mutate(&def)

			list := problems(t, New(0).Definition(def))
			require.True(t, containsProblem(list, tt.problem), "problems %v should mention %q", list, tt.problem)
		})
	}
}

func TestDefinition_CollectsAllProblems(t *testing.T) {
	def := validDefinition()
	def.TrafficAllocation = 0
	def.Variants[0].IsControl = false
	def.Variants[0].Weight = 0.1

	list := problems(t, New(0).Definition(def))
	require.GreaterOrEqual(t, len(list), 3)
}
