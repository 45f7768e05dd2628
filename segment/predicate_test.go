package segment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/splitter/types"
)

func profile(attrs map[string]types.Value) types.Profile {
	return types.Profile{UserID: "u1", Attributes: attrs}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name    string
		attr    types.Value
		op      Operator
		operand types.Value
		want    bool
	}{
		{"int eq", types.Int(5), OpEqual, types.Int(5), true},
		{"int ne", types.Int(5), OpNotEqual, types.Int(5), false},
		{"int gt", types.Int(6), OpGreaterThan, types.Int(5), true},
		{"int gte equal", types.Int(5), OpGreaterOrEqual, types.Int(5), true},
		{"int lt", types.Int(4), OpLessThan, types.Int(5), true},
		{"int lte greater", types.Int(6), OpLessOrEqual, types.Int(5), false},
		{"int contains", types.Int(5), OpContains, types.Int(5), false},
		{"float eq within epsilon", types.Float(1.0004), OpEqual, types.Float(1.0), true},
		{"float eq outside epsilon", types.Float(1.002), OpEqual, types.Float(1.0), false},
		{"float gt within epsilon", types.Float(1.0004), OpGreaterThan, types.Float(1.0), false},
		{"float gte within epsilon", types.Float(0.9996), OpGreaterOrEqual, types.Float(1.0), true},
		{"float lt", types.Float(0.5), OpLessThan, types.Float(1.0), true},
		{"string eq", types.String("DE"), OpEqual, types.String("DE"), true},
		{"string contains", types.String("premium-annual"), OpContains, types.String("premium"), true},
		{"string ordering", types.String("b"), OpGreaterThan, types.String("a"), true},
		{"bool eq", types.Bool(true), OpEqual, types.Bool(true), true},
		{"bool ne", types.Bool(true), OpNotEqual, types.Bool(false), true},
		{"bool gt unsupported", types.Bool(true), OpGreaterThan, types.Bool(false), false},
		{"mismatched kinds", types.Int(5), OpEqual, types.Float(5), false},
		{"string vs int", types.String("5"), OpEqual, types.Int(5), false},
		{"list contains", types.List(types.String("ios"), types.String("web")), OpContains, types.String("web"), true},
		{"list missing", types.List(types.String("ios")), OpContains, types.String("web"), false},
		{"unknown operator", types.Int(5), Operator(99), types.Int(5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Compare(tt.attr, tt.op, tt.operand))
		})
	}
}

func TestPredicate_Combinators(t *testing.T) {
	powerUser := Criterion{Attribute: "sessions_count", Operator: OpGreaterOrEqual, Value: types.Int(10)}
	germany := Criterion{Attribute: "country", Operator: OpEqual, Value: types.String("DE")}

	p := profile(map[string]types.Value{
		"sessions_count": types.Int(12),
		"country":        types.String("FR"),
	})

	require.False(t, MustCompile(Spec{Combinator: And, Criteria: []Criterion{powerUser, germany}}).Matches(p))
	require.True(t, MustCompile(Spec{Combinator: Or, Criteria: []Criterion{powerUser, germany}}).Matches(p))
	require.True(t, MustCompile(Spec{Combinator: Not, Criteria: []Criterion{powerUser, germany}}).Matches(p))
	require.False(t, MustCompile(Spec{Combinator: Not, Criteria: []Criterion{powerUser}}).Matches(p))
}

func TestPredicate_EmptyCriteria(t *testing.T) {
	p := profile(nil)

	require.True(t, MustCompile(Spec{Combinator: And}).Matches(p))
	require.False(t, MustCompile(Spec{Combinator: Or}).Matches(p))
	require.False(t, MustCompile(Spec{Combinator: Not}).Matches(p))
}

func TestPredicate_MissingAttribute(t *testing.T) {
	pred := MustCompile(Spec{
		Combinator: And,
		Criteria:   []Criterion{{Attribute: "plan", Operator: OpEqual, Value: types.String("pro")}},
	})

	require.False(t, pred.Matches(profile(map[string]types.Value{"country": types.String("DE")})))
	require.False(t, pred.Matches(types.Profile{}))
}

func TestPredicate_NilMatchesEverything(t *testing.T) {
	var pred *Predicate
	require.True(t, pred.Matches(types.Profile{}))
}

func TestCompile_Rejects(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
	}{
		{"unknown combinator", Spec{Combinator: Combinator(7)}},
		{"unknown operator", Spec{Criteria: []Criterion{{Attribute: "a", Operator: Operator(42), Value: types.Int(1)}}}},
		{"empty attribute", Spec{Criteria: []Criterion{{Operator: OpEqual, Value: types.Int(1)}}}},
		{"null operand", Spec{Criteria: []Criterion{{Attribute: "a", Operator: OpEqual}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.spec)
			require.Error(t, err)
			require.NotEmpty(t, Problems(tt.spec))
		})
	}
}

func TestCompile_CopiesCriteria(t *testing.T) {
	spec := Spec{Criteria: []Criterion{{Attribute: "country", Operator: OpEqual, Value: types.String("DE")}}}
	pred := MustCompile(spec)

	spec.Criteria[0].Value = types.String("FR")

	require.True(t, pred.Matches(profile(map[string]types.Value{"country": types.String("DE")})))
}
