package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValueAccessorsRespectKind(t *testing.T) {
	v := Int(42)

	i, ok := v.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(42), i)

	_, ok = v.AsFloat()
	require.False(t, ok)
	_, ok = v.AsString()
	require.False(t, ok)
}

func TestValueEqual(t *testing.T) {
	require.True(t, String("a").Equal(String("a")))
	require.False(t, Int(1).Equal(Float(1)))
	require.True(t, List(Int(1), String("x")).Equal(List(Int(1), String("x"))))
	require.False(t, List(Int(1)).Equal(List(Int(2))))
	require.True(t, Map(map[string]Value{"k": Bool(true)}).Equal(Map(map[string]Value{"k": Bool(true)})))
}

func TestValueJSON(t *testing.T) {
	params := map[string]Value{
		"color":    String("blue"),
		"discount": Float(0.15),
		"limit":    Int(3),
		"enabled":  Bool(true),
		"tiers":    List(Int(1), Int(2)),
	}

	data, err := json.Marshal(params)
	require.NoError(t, err)
	require.JSONEq(t, `{"color":"blue","discount":0.15,"limit":3,"enabled":true,"tiers":[1,2]}`, string(data))

	var decoded map[string]Value
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, KindInt, decoded["limit"].Kind())
	require.Equal(t, KindFloat, decoded["discount"].Kind())
	require.True(t, decoded["tiers"].Equal(params["tiers"]))
}

func TestValueYAMLUsesResolvedTags(t *testing.T) {
	doc := `
name: checkout
retries: 3
ratio: 0.5
beta: true
quoted: "7"
tags: [a, b]
nested:
  depth: 2
`
	var decoded map[string]Value
	require.NoError(t, yaml.Unmarshal([]byte(doc), &decoded))

	require.Equal(t, KindString, decoded["name"].Kind())
	require.Equal(t, KindInt, decoded["retries"].Kind())
	require.Equal(t, KindFloat, decoded["ratio"].Kind())
	require.Equal(t, KindBool, decoded["beta"].Kind())
	require.Equal(t, KindString, decoded["quoted"].Kind())
	require.Equal(t, KindList, decoded["tags"].Kind())
	require.Equal(t, KindMap, decoded["nested"].Kind())

	nested, ok := decoded["nested"].AsMap()
	require.True(t, ok)
	require.True(t, nested["depth"].Equal(Int(2)))
}

func TestDefinitionCloneIsDeep(t *testing.T) {
	def := Definition{
		Variants: []Variant{{ID: "a", Parameters: map[string]Value{"x": Int(1)}}},
		Segmentation: &Segmentation{
			Criteria: []Criterion{{Attribute: "country", Operator: OpEqual, Value: String("NZ")}},
		},
	}

	clone := def.Clone()
	clone.Variants[0].Parameters["x"] = Int(2)
	clone.Segmentation.Criteria[0].Attribute = "region"

	require.True(t, def.Variants[0].Parameters["x"].Equal(Int(1)))
	require.Equal(t, "country", def.Segmentation.Criteria[0].Attribute)
}
