package types

import (
	"fmt"
	"slices"
)

// Operator is an atomic comparison used by segmentation criteria.
type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpGreaterThan
	OpGreaterOrEqual
	OpLessThan
	OpLessOrEqual
	OpContains
)

var operatorNames = [...]string{"eq", "ne", "gt", "gte", "lt", "lte", "contains"}

// String returns the string representation of the operator.
func (o Operator) String() string {
	if o < 0 || int(o) >= len(operatorNames) {
		return fmt.Sprintf("operator(%d)", int(o))
	}

	return operatorNames[o]
}

// Valid reports whether o is a known operator.
func (o Operator) Valid() bool {
	return o >= 0 && int(o) < len(operatorNames)
}

// MarshalText implements encoding.TextMarshaler.
func (o Operator) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Operator) UnmarshalText(text []byte) error {
	idx, err := parseEnum("operator", operatorNames[:], string(text))
	if err != nil {
		return err
	}
	*o = Operator(idx)

	return nil
}

// Combinator joins the criteria of a segmentation.
type Combinator int

const (
	// CombineAnd matches when every criterion matches.
	CombineAnd Combinator = iota

	// CombineOr matches when any criterion matches.
	CombineOr

	// CombineNot matches unless every criterion matches.
	CombineNot
)

var combinatorNames = [...]string{"and", "or", "not"}

// String returns the string representation of the combinator.
func (c Combinator) String() string {
	if c < 0 || int(c) >= len(combinatorNames) {
		return fmt.Sprintf("combinator(%d)", int(c))
	}

	return combinatorNames[c]
}

// Valid reports whether c is a known combinator.
func (c Combinator) Valid() bool {
	return c >= 0 && int(c) < len(combinatorNames)
}

// MarshalText implements encoding.TextMarshaler.
func (c Combinator) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Combinator) UnmarshalText(text []byte) error {
	idx, err := parseEnum("combinator", combinatorNames[:], string(text))
	if err != nil {
		return err
	}
	*c = Combinator(idx)

	return nil
}

// Criterion compares one profile attribute against an operand.
type Criterion struct {
	// Attribute names the profile attribute, e.g. "sessions_count" or "country".
	Attribute string `json:"attribute" yaml:"attribute"`

	// Operator is the comparison applied.
	Operator Operator `json:"operator" yaml:"operator"`

	// Value is the right-hand operand.
	Value Value `json:"value" yaml:"value"`
}

// Segmentation is a boolean combination of criteria restricting eligibility.
type Segmentation struct {
	Combinator Combinator  `json:"combinator" yaml:"combinator"`
	Criteria   []Criterion `json:"criteria" yaml:"criteria"`
}

// Clone returns a copy of the segmentation.
func (s Segmentation) Clone() Segmentation {
	s.Criteria = slices.Clone(s.Criteria)
	return s
}
