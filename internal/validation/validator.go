package validation

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/arloliu/splitter/segment"
	"github.com/arloliu/splitter/types"
)

// DefaultWeightTolerance is the allowed deviation of the weight sum from 1.
const DefaultWeightTolerance = 0.01

// Validator validates experiment definitions.
//
// A Validator is safe for concurrent use.
type Validator struct {
	validate        *validator.Validate
	weightTolerance float64
}

// New creates a validator.
//
// Parameters:
//   - weightTolerance: Allowed deviation of the variant weight sum from 1 (<= 0 selects the default)
//
// Returns:
//   - *Validator: Ready-to-use validator
func New(weightTolerance float64) *Validator {
	if weightTolerance <= 0 {
		weightTolerance = DefaultWeightTolerance
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("target_metric", func(fl validator.FieldLevel) bool {
		m, ok := fl.Field().Interface().(types.TargetMetric)
		return ok && m.Valid()
	})

	return &Validator{validate: v, weightTolerance: weightTolerance}
}

// Definition validates an experiment definition.
//
// Parameters:
//   - def: Definition with defaults already applied
//
// Returns:
//   - error: *types.ValidationError listing every problem, or nil
func (v *Validator) Definition(def types.Definition) error {
	problems := v.structProblems(def)
	problems = append(problems, v.domainProblems(def)...)
	if len(problems) == 0 {
		return nil
	}

	return &types.ValidationError{ExperimentID: def.ID, Problems: problems}
}

func (v *Validator) structProblems(def types.Definition) []string {
	err := v.validate.Struct(def)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}

	return problems
}

func (v *Validator) domainProblems(def types.Definition) []string {
	var problems []string

	var sum float64
	controls := 0
	seen := make(map[string]struct{}, len(def.Variants))
	for _, variant := range def.Variants {
		sum += variant.Weight
		if variant.IsControl {
			controls++
		}
		if variant.ID == "" {
			continue
		}
		if _, dup := seen[variant.ID]; dup {
			problems = append(problems, fmt.Sprintf("variants: duplicate variant id %q", variant.ID))
		}
		seen[variant.ID] = struct{}{}
	}

	if len(def.Variants) > 0 {
		if math.Abs(sum-1) > v.weightTolerance {
			problems = append(problems, fmt.Sprintf("variants: weights sum to %.4f, want 1 (tolerance %.2f)", sum, v.weightTolerance))
		}
		if controls == 0 {
			problems = append(problems, "variants: no control variant")
		}
	}

	if def.Segmentation != nil {
		problems = append(problems, segment.Problems(*def.Segmentation)...)
	}

	return problems
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return field + ": is required"
	case "min":
		return fmt.Sprintf("%s: needs at least %s entries", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s: must be greater than %s, got %v", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s: must be at least %s, got %v", field, fe.Param(), fe.Value())
	case "lt":
		return fmt.Sprintf("%s: must be less than %s, got %v", field, fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s: must be at most %s, got %v", field, fe.Param(), fe.Value())
	case "target_metric":
		return fmt.Sprintf("%s: unknown target metric %v", field, fe.Value())
	default:
		return fmt.Sprintf("%s: failed %q check", field, fe.Tag())
	}
}
