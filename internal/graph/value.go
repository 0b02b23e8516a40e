package graph

import "fmt"

// Value is a sealed interface representing the signal value types that can
// travel over a connection or live in an instance's parameter/state bags.
// Only Num, Str, Bool, and Null implement it.
type Value interface {
	signalValue() // Sealed - only these types implement it
}

// Num represents a numeric signal value (audio and number ports).
type Num float64

func (Num) signalValue() {}

// Str represents a string value.
type Str string

func (Str) signalValue() {}

// Bool represents a boolean value (boolean and gate ports).
type Bool bool

func (Bool) signalValue() {}

// Null represents an absent value (trigger and any ports default here).
// Using an explicit type keeps ValueMap entries non-nil and printable.
type Null struct{}

func (Null) signalValue() {}

// ValueMap maps port ids (or parameter/state keys) to values.
type ValueMap map[string]Value

// Clone returns a shallow copy. Values are immutable so element sharing
// is safe; only the map itself is duplicated.
func (m ValueMap) Clone() ValueMap {
	if m == nil {
		return nil
	}
	out := make(ValueMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge applies a shallow override of patch onto m and returns the result.
// Keys present in patch overwrite, keys absent from patch persist. This is
// the documented contract for internal-state merging after each tick.
// The receiver is not mutated; a nil receiver is treated as empty.
func (m ValueMap) Merge(patch ValueMap) ValueMap {
	out := make(ValueMap, len(m)+len(patch))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Truthy reports whether v reads as true on a gate/boolean input.
// Numbers are true when non-zero, strings when non-empty, Null is false.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case Bool:
		return bool(val)
	case Num:
		return val != 0
	case Str:
		return val != ""
	default:
		return false
	}
}

// AsFloat coerces v to a float64 for numeric consumers.
// Booleans map to 0/1, everything non-numeric maps to 0.
func AsFloat(v Value) float64 {
	switch val := v.(type) {
	case Num:
		return float64(val)
	case Bool:
		if val {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// AsString coerces v to its string form for string consumers.
func AsString(v Value) string {
	switch val := v.(type) {
	case Str:
		return string(val)
	case Num:
		return fmt.Sprintf("%g", float64(val))
	case Bool:
		return fmt.Sprintf("%t", bool(val))
	default:
		return ""
	}
}

// FromAny converts a plain Go value (as produced by YAML or CUE decoding)
// into a Value. Supported inputs: nil, bool, string, all int/float widths.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return Str(val), nil
	case float64:
		return Num(val), nil
	case float32:
		return Num(val), nil
	case int:
		return Num(val), nil
	case int64:
		return Num(val), nil
	case int32:
		return Num(val), nil
	case uint64:
		return Num(val), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// ToAny converts a Value back to a plain Go value for serialization
// boundaries (YAML, CUE, JSON output).
func ToAny(v Value) any {
	switch val := v.(type) {
	case Num:
		return float64(val)
	case Str:
		return string(val)
	case Bool:
		return bool(val)
	default:
		return nil
	}
}

// MapFromAny converts a map of plain Go values into a ValueMap.
func MapFromAny(m map[string]any) (ValueMap, error) {
	if m == nil {
		return nil, nil
	}
	out := make(ValueMap, len(m))
	for k, raw := range m {
		v, err := FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

// MapToAny converts a ValueMap into plain Go values.
func MapToAny(m ValueMap) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = ToAny(v)
	}
	return out
}
