package segment

import (
	"fmt"

	"github.com/arloliu/splitter/types"
)

// Aliases for the segmentation data model, which lives in types so experiment
// definitions can carry it without importing this package.
type (
	Spec       = types.Segmentation
	Criterion  = types.Criterion
	Operator   = types.Operator
	Combinator = types.Combinator
)

const (
	OpEqual          = types.OpEqual
	OpNotEqual       = types.OpNotEqual
	OpGreaterThan    = types.OpGreaterThan
	OpGreaterOrEqual = types.OpGreaterOrEqual
	OpLessThan       = types.OpLessThan
	OpLessOrEqual    = types.OpLessOrEqual
	OpContains       = types.OpContains

	And = types.CombineAnd
	Or  = types.CombineOr
	Not = types.CombineNot
)

// Predicate is a compiled, immutable segmentation rule.
//
// A Predicate is safe for concurrent use.
type Predicate struct {
	combinator Combinator
	criteria   []Criterion
}

// Compile checks a segmentation and returns its predicate.
//
// Parameters:
//   - spec: Segmentation to compile
//
// Returns:
//   - *Predicate: Compiled predicate
//   - error: Unknown combinator, unknown operator, empty attribute name or null operand
func Compile(spec Spec) (*Predicate, error) {
	if problems := Problems(spec); len(problems) > 0 {
		return nil, fmt.Errorf("invalid segmentation: %s", problems[0])
	}

	return &Predicate{
		combinator: spec.Combinator,
		criteria:   spec.Clone().Criteria,
	}, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and static rules.
func MustCompile(spec Spec) *Predicate {
	p, err := Compile(spec)
	if err != nil {
		panic(err)
	}

	return p
}

// Problems lists every defect of a segmentation. An empty result means Compile succeeds.
func Problems(spec Spec) []string {
	var problems []string
	if !spec.Combinator.Valid() {
		problems = append(problems, fmt.Sprintf("segmentation: unknown combinator %s", spec.Combinator))
	}

	for i, c := range spec.Criteria {
		if c.Attribute == "" {
			problems = append(problems, fmt.Sprintf("segmentation criterion %d: attribute is required", i))
		}
		if !c.Operator.Valid() {
			problems = append(problems, fmt.Sprintf("segmentation criterion %d: unknown operator %s", i, c.Operator))
		}
		if c.Value.IsNull() {
			problems = append(problems, fmt.Sprintf("segmentation criterion %d: operand is required", i))
		}
	}

	return problems
}

// Matches reports whether the profile satisfies the predicate.
//
// Combinator semantics:
//   - and: every criterion matches (no criteria matches everything)
//   - or: at least one criterion matches (no criteria matches nothing)
//   - not: not every criterion matches (no criteria matches nothing)
func (p *Predicate) Matches(profile types.Profile) bool {
	if p == nil {
		return true
	}

	switch p.combinator {
	case And:
		return p.all(profile)
	case Or:
		for _, c := range p.criteria {
			if Evaluate(c, profile) {
				return true
			}
		}

		return false
	case Not:
		if len(p.criteria) == 0 {
			return false
		}

		return !p.all(profile)
	default:
		return false
	}
}

func (p *Predicate) all(profile types.Profile) bool {
	for _, c := range p.criteria {
		if !Evaluate(c, profile) {
			return false
		}
	}

	return true
}

// Evaluate applies one criterion to a profile.
func Evaluate(c Criterion, profile types.Profile) bool {
	attr, ok := profile.Attribute(c.Attribute)
	if !ok {
		return false
	}

	return Compare(attr, c.Operator, c.Value)
}
