package verdict

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags a Value with its runtime type. The tag travels with the
// value through the plain-map form, so a reader always knows whether
// "30" was stored as a string or a number, and whether a string names
// a literal or a context variable.
type Kind string

const (
	KindInt      Kind = "int"
	KindFloat    Kind = "float"
	KindStr      Kind = "str"
	KindBool     Kind = "bool"
	KindList     Kind = "list"
	KindVariable Kind = "variable"
	KindNull     Kind = "null"
)

// ParseKind parses a type tag from its string form.
func ParseKind(t string) (Kind, error) {
	switch Kind(t) {
	case KindInt, KindFloat, KindStr, KindBool, KindList, KindVariable, KindNull:
		return Kind(t), nil
	default:
		return "", fmt.Errorf("%w: unrecognized type tag %q", ErrMalformedValue, t)
	}
}

// Value is an immutable typed operand used in conditions and results.
// Build one with Int, Float, Str, Bool, List, Var or Null, or let Val
// infer the tag from a raw Go value. The zero Value is invalid and
// fails with ErrMalformedValue when used.
//
// A Value tagged KindVariable is a deferred reference: it names a
// context key and is resolved only during evaluation, never during
// construction or parsing.
type Value struct {
	kind Kind
	n    int64
	f    float64
	s    string // str payload or variable name
	b    bool
	list []Value

	// Go type name recorded by Val when no tag fits the input.
	// Carried so the eventual error can name the offending type.
	badType string
}

func Int(v int64) Value     { return Value{kind: KindInt, n: v} }
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }
func Str(v string) Value    { return Value{kind: KindStr, s: v} }
func Bool(v bool) Value     { return Value{kind: KindBool, b: v} }
func Null() Value           { return Value{kind: KindNull} }

// Var returns a variable reference to the named context key.
func Var(name string) Value { return Value{kind: KindVariable, s: name} }

// List returns a list value owning copies of the items.
func List(items ...Value) Value {
	l := make([]Value, len(items))
	copy(l, items)
	return Value{kind: KindList, list: l}
}

// Val infers the tag for a raw Go value. It accepts the numeric, string
// and bool scalars, nil, slices (recursively) and Value itself. An
// unsupported type yields an invalid Value; the error surfaces from
// whichever operation later touches it, so fluent builder chains are
// not interrupted.
func Val(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return Int(int64(t))
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case string:
		return Str(t)
	case []Value:
		return List(t...)
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = Val(e)
		}
		return Value{kind: KindList, list: items}
	case []string:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = Str(e)
		}
		return Value{kind: KindList, list: items}
	case []int:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = Int(int64(e))
		}
		return Value{kind: KindList, list: items}
	case []int64:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = Int(e)
		}
		return Value{kind: KindList, list: items}
	case []float64:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = Float(e)
		}
		return Value{kind: KindList, list: items}
	default:
		return Value{badType: fmt.Sprintf("%T", v)}
	}
}

// Kind returns the value's type tag. The zero Value returns "".
func (v Value) Kind() Kind { return v.kind }

// check reports whether the value is usable.
func (v Value) check() error {
	if v.kind == "" {
		if v.badType != "" {
			return fmt.Errorf("%w: no type tag for Go type %s", ErrMalformedValue, v.badType)
		}
		return fmt.Errorf("%w: zero value", ErrMalformedValue)
	}
	if v.kind == KindList {
		for i := range v.list {
			if err := v.list[i].check(); err != nil {
				return fmt.Errorf("list item %d: %w", i, err)
			}
		}
	}
	return nil
}

// Equal reports structural equality: tags must match and payloads must
// be equal, with list comparison element-wise and order-sensitive.
// Operator evaluation uses looser numeric comparison; this method is
// the strict form that round-tripping preserves.
func (v Value) Equal(o Value) bool {
	if v.kind == "" || v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.n == o.n
	case KindFloat:
		return v.f == o.f
	case KindStr, KindVariable:
		return v.s == o.s
	case KindBool:
		return v.b == o.b
	case KindNull:
		return true
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Native returns the raw Go form of the value: int64, float64, string,
// bool, nil, or []any for lists. A variable reference returns its name;
// resolve it through the engine to obtain the referenced value.
func (v Value) Native() any {
	switch v.kind {
	case KindInt:
		return v.n
	case KindFloat:
		return v.f
	case KindStr, KindVariable:
		return v.s
	case KindBool:
		return v.b
	case KindList:
		out := make([]any, len(v.list))
		for i := range v.list {
			out[i] = v.list[i].Native()
		}
		return out
	default:
		return nil
	}
}

// String renders the value for tables and traces. Strings are quoted,
// variable references are marked with $.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.n, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindStr:
		return strconv.Quote(v.s)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindVariable:
		return "$" + v.s
	case KindNull:
		return "null"
	case KindList:
		items := make([]string, len(v.list))
		for i := range v.list {
			items[i] = v.list[i].String()
		}
		return "[" + strings.Join(items, ", ") + "]"
	default:
		return "<invalid>"
	}
}

// ToMap returns the plain form {"type": tag, "value": payload}. List
// payloads are sequences of recursively converted values.
func (v Value) ToMap() (map[string]any, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	m := map[string]any{"type": string(v.kind)}
	switch v.kind {
	case KindInt:
		m["value"] = v.n
	case KindFloat:
		m["value"] = v.f
	case KindStr, KindVariable:
		m["value"] = v.s
	case KindBool:
		m["value"] = v.b
	case KindNull:
		m["value"] = nil
	case KindList:
		items := make([]any, len(v.list))
		for i := range v.list {
			im, err := v.list[i].ToMap()
			if err != nil {
				return nil, err
			}
			items[i] = im
		}
		m["value"] = items
	}
	return m, nil
}

// valueFromMap is the inverse of ToMap. It tolerates the numeric drift
// of decoders: JSON hands back float64 for whole numbers, YAML hands
// back int for them, and both are accepted when the declared tag says
// otherwise but the payload is exactly representable.
func valueFromMap(m map[string]any) (Value, error) {
	rawTag, ok := m["type"]
	if !ok {
		return Value{}, fmt.Errorf("%w: missing type tag", ErrMalformedValue)
	}
	tag, ok := rawTag.(string)
	if !ok {
		return Value{}, fmt.Errorf("%w: type tag must be a string, got %T", ErrMalformedValue, rawTag)
	}
	kind, err := ParseKind(tag)
	if err != nil {
		return Value{}, err
	}

	raw := m["value"]
	switch kind {
	case KindInt:
		switch n := raw.(type) {
		case int:
			return Int(int64(n)), nil
		case int64:
			return Int(n), nil
		case uint64:
			return Int(int64(n)), nil
		case float64:
			if n != float64(int64(n)) {
				return Value{}, fmt.Errorf("%w: int tag with fractional value %v", ErrMalformedValue, n)
			}
			return Int(int64(n)), nil
		}
	case KindFloat:
		switch n := raw.(type) {
		case float64:
			return Float(n), nil
		case int:
			return Float(float64(n)), nil
		case int64:
			return Float(float64(n)), nil
		}
	case KindStr:
		if s, ok := raw.(string); ok {
			return Str(s), nil
		}
	case KindBool:
		if b, ok := raw.(bool); ok {
			return Bool(b), nil
		}
	case KindNull:
		if raw == nil {
			return Null(), nil
		}
	case KindVariable:
		if s, ok := raw.(string); ok && s != "" {
			return Var(s), nil
		}
	case KindList:
		seq, ok := raw.([]any)
		if !ok {
			return Value{}, fmt.Errorf("%w: list tag with non-sequence value %T", ErrMalformedValue, raw)
		}
		items := make([]Value, len(seq))
		for i, e := range seq {
			em, ok := e.(map[string]any)
			if !ok {
				return Value{}, fmt.Errorf("%w: list item %d is not a typed value", ErrMalformedValue, i)
			}
			item, err := valueFromMap(em)
			if err != nil {
				return Value{}, fmt.Errorf("list item %d: %w", i, err)
			}
			items[i] = item
		}
		return Value{kind: KindList, list: items}, nil
	}
	return Value{}, fmt.Errorf("%w: %s tag with %T value", ErrMalformedValue, kind, raw)
}
