package segment

import (
	"math"
	"strings"

	"github.com/arloliu/splitter/types"
)

// FloatEpsilon is the tolerance used for float equality.
const FloatEpsilon = 0.001

// Compare applies op with attr on the left and operand on the right.
//
// Supported combinations:
//   - int, float: all ordering and equality operators
//   - string: equality, ordering (lexicographic) and contains (substring)
//   - bool: eq, ne
//   - list attribute: contains (element equality)
//
// Every other combination, including operands of a different kind than the
// attribute, returns false.
func Compare(attr types.Value, op Operator, operand types.Value) bool {
	if op == OpContains && attr.Kind() == types.KindList {
		items, _ := attr.AsList()
		for _, item := range items {
			if item.Equal(operand) {
				return true
			}
		}

		return false
	}

	if attr.Kind() != operand.Kind() {
		return false
	}

	switch attr.Kind() {
	case types.KindInt:
		a, _ := attr.AsInt()
		b, _ := operand.AsInt()

		return compareOrdered(a, b, op)
	case types.KindFloat:
		a, _ := attr.AsFloat()
		b, _ := operand.AsFloat()

		return compareFloat(a, b, op)
	case types.KindString:
		a, _ := attr.AsString()
		b, _ := operand.AsString()
		if op == OpContains {
			return strings.Contains(a, b)
		}

		return compareOrdered(a, b, op)
	case types.KindBool:
		a, _ := attr.AsBool()
		b, _ := operand.AsBool()
		switch op {
		case OpEqual:
			return a == b
		case OpNotEqual:
			return a != b
		default:
			return false
		}
	default:
		return false
	}
}

func compareOrdered[T int64 | string](a, b T, op Operator) bool {
	switch op {
	case OpEqual:
		return a == b
	case OpNotEqual:
		return a != b
	case OpGreaterThan:
		return a > b
	case OpGreaterOrEqual:
		return a >= b
	case OpLessThan:
		return a < b
	case OpLessOrEqual:
		return a <= b
	default:
		return false
	}
}

func compareFloat(a, b float64, op Operator) bool {
	eq := math.Abs(a-b) < FloatEpsilon
	switch op {
	case OpEqual:
		return eq
	case OpNotEqual:
		return !eq
	case OpGreaterThan:
		return a > b && !eq
	case OpGreaterOrEqual:
		return a > b || eq
	case OpLessThan:
		return a < b && !eq
	case OpLessOrEqual:
		return a < b || eq
	default:
		return false
	}
}
