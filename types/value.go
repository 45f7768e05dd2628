package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind discriminates the payload held by a Value.
type Kind uint8

const (
	// KindNull is the zero Value.
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindList
	KindMap
)

var kindNames = [...]string{"null", "string", "int", "float", "bool", "list", "map"}

// String returns the string representation of the kind.
func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return "unknown"
	}

	return kindNames[k]
}

// Value is a tagged union over string, int64, float64, bool, list and map payloads.
//
// Values carry variant parameters (the treatment configuration delivered to a user)
// and segmentation operands. Only the field selected by Kind is meaningful.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	list []Value
	m    map[string]Value
}

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int returns an integer Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating point Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// List returns a list Value. The items are copied.
func List(items ...Value) Value {
	return Value{kind: KindList, list: slices.Clone(items)}
}

// Map returns a map Value. The entries are copied.
func Map(entries map[string]Value) Value {
	return Value{kind: KindMap, m: maps.Clone(entries)}
}

// Kind returns the payload discriminator.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v holds no payload.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string payload.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsInt returns the integer payload.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the floating point payload.
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsList returns a copy of the list payload.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}

	return slices.Clone(v.list), true
}

// AsMap returns a copy of the map payload.
func (v Value) AsMap() (map[string]Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}

	return maps.Clone(v.m), true
}

// Equal reports deep equality. Values of different kinds are never equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.s == o.s
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindBool:
		return v.b == o.b
	case KindList:
		return slices.EqualFunc(v.list, o.list, Value.Equal)
	case KindMap:
		return maps.EqualFunc(v.m, o.m, Value.Equal)
	default:
		return false
	}
}

// String renders the value for logs and summaries.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}

		return "[" + strings.Join(parts, " ") + "]"
	case KindMap:
		keys := slices.Sorted(maps.Keys(v.m))
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ":" + v.m[k].String()
		}

		return "{" + strings.Join(parts, " ") + "}"
	default:
		return "null"
	}
}

// MarshalJSON encodes the payload in its natural JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.s)
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	case KindBool:
		return json.Marshal(v.b)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}

		return json.Marshal(v.list)
	case KindMap:
		if v.m == nil {
			return []byte("{}"), nil
		}

		return json.Marshal(v.m)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a natural JSON value. Numbers without a fraction or
// exponent become KindInt, all other numbers KindFloat.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	decoded, err := fromJSON(raw)
	if err != nil {
		return err
	}
	*v = decoded

	return nil
}

func fromJSON(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Value{}, nil
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil && !strings.ContainsAny(x.String(), ".eE") {
			return Int(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", x.String(), err)
		}

		return Float(f), nil
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			val, err := fromJSON(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = val
		}

		return Value{kind: KindList, list: items}, nil
	case map[string]any:
		entries := make(map[string]Value, len(x))
		for k, item := range x {
			val, err := fromJSON(item)
			if err != nil {
				return Value{}, err
			}
			entries[k] = val
		}

		return Value{kind: KindMap, m: entries}, nil
	default:
		return Value{}, fmt.Errorf("unsupported JSON value of type %T", raw)
	}
}

// UnmarshalYAML decodes YAML scalars by their resolved tag, sequences into
// lists and mappings into maps.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	decoded, err := fromYAML(node)
	if err != nil {
		return err
	}
	*v = decoded

	return nil
}

func fromYAML(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return fromYAML(node.Alias)
	case yaml.SequenceNode:
		items := make([]Value, len(node.Content))
		for i, child := range node.Content {
			val, err := fromYAML(child)
			if err != nil {
				return Value{}, err
			}
			items[i] = val
		}

		return Value{kind: KindList, list: items}, nil
	case yaml.MappingNode:
		entries := make(map[string]Value, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			val, err := fromYAML(node.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			entries[node.Content[i].Value] = val
		}

		return Value{kind: KindMap, m: entries}, nil
	case yaml.ScalarNode:
		return scalarFromYAML(node)
	default:
		return Value{}, fmt.Errorf("line %d: unsupported YAML node", node.Line)
	}
}

func scalarFromYAML(node *yaml.Node) (Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return Value{}, nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return Value{}, err
		}

		return Int(i), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return Value{}, err
		}

		return Float(f), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return Value{}, err
		}

		return Bool(b), nil
	default:
		return String(node.Value), nil
	}
}
