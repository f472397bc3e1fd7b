package bag

import (
	"fmt"
	"math"
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface over the wire value kinds.
// Only String, Int, Float, Bool, List and Bag implement it.
type Value interface {
	bagValue()
}

// String is a string leaf.
type String string

func (String) bagValue() {}

// Int is an integer leaf. Always int64.
type Int int64

func (Int) bagValue() {}

// Float is a floating point leaf. NaN and infinities are not representable
// on the wire and are rejected by MarshalCanonical.
type Float float64

func (Float) bagValue() {}

// Bool is a boolean leaf.
type Bool bool

func (Bool) bagValue() {}

// List is an ordered sequence of values.
type List []Value

func (List) bagValue() {}

// Bag maps string keys to values. Use SortedKeys for deterministic iteration.
type Bag map[string]Value

func (Bag) bagValue() {}

// Kind names for error messages.
const (
	KindString = "string"
	KindInt    = "int"
	KindFloat  = "float"
	KindBool   = "bool"
	KindList   = "list"
	KindBag    = "bag"
	KindAbsent = "absent"
)

// KindOf returns the wire kind name of v. A nil value reports KindAbsent.
func KindOf(v Value) string {
	switch v.(type) {
	case nil:
		return KindAbsent
	case String:
		return KindString
	case Int:
		return KindInt
	case Float:
		return KindFloat
	case Bool:
		return KindBool
	case List:
		return KindList
	case Bag:
		return KindBag
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Pair is a key-value pair for Bag construction.
type Pair struct {
	Key   string
	Value Value
}

// P is a shorthand for Pair.
// Example: Of(P("low", Float(100)), P("high", Float(200)))
func P(key string, value Value) Pair {
	return Pair{Key: key, Value: value}
}

// Of builds a Bag from pairs. Later pairs overwrite earlier ones.
func Of(pairs ...Pair) Bag {
	b := make(Bag, len(pairs))
	for _, p := range pairs {
		b[p.Key] = p.Value
	}
	return b
}

// Floats builds a List of Float values.
func Floats(vals ...float64) List {
	l := make(List, len(vals))
	for i, v := range vals {
		l[i] = Float(v)
	}
	return l
}

// Ints builds a List of Int values.
func Ints(vals ...int64) List {
	l := make(List, len(vals))
	for i, v := range vals {
		l[i] = Int(v)
	}
	return l
}

// Strings builds a List of String values.
func Strings(vals ...string) List {
	l := make(List, len(vals))
	for i, v := range vals {
		l[i] = String(v)
	}
	return l
}

// Get returns the value stored under key.
func (b Bag) Get(key string) (Value, bool) {
	v, ok := b[key]
	return v, ok
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings orders by UTF-8 bytes, which differs outside the BMP.
func (b Bag) SortedKeys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

func compareKeys(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}

// Clone returns a deep copy of v. Leaves are returned as is.
func Clone(v Value) Value {
	switch val := v.(type) {
	case List:
		if val == nil {
			return List(nil)
		}
		out := make(List, len(val))
		for i, elem := range val {
			out[i] = Clone(elem)
		}
		return out
	case Bag:
		return val.Clone()
	default:
		return v
	}
}

// Clone returns a deep copy of the bag. A nil bag clones to an empty bag.
func (b Bag) Clone() Bag {
	out := make(Bag, len(b))
	for k, v := range b {
		out[k] = Clone(v)
	}
	return out
}

// Equal reports whether a and b are structurally equal. Int and Float never
// compare equal to each other.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Float:
		bv, ok := b.(Float)
		return ok && (av == bv || math.IsNaN(float64(av)) && math.IsNaN(float64(bv)))
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Bag:
		bv, ok := b.(Bag)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, ok := bv[k]
			if !ok || !Equal(v, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// FromAny converts a decoded Go value (from YAML, CUE or encoding/json with
// UseNumber) into a Value. nil is rejected.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is not a bag value")
	case Value:
		return Clone(val), nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d out of int64 range", val)
		}
		return Int(val), nil
	case float32:
		return Float(val), nil
	case float64:
		return Float(val), nil
	case []string:
		return Strings(val...), nil
	case []float64:
		return Floats(val...), nil
	case []any:
		out := make(List, len(val))
		for i, elem := range val {
			bv, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = bv
		}
		return out, nil
	case map[string]any:
		out := make(Bag, len(val))
		for k, elem := range val {
			bv, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			out[k] = bv
		}
		return out, nil
	case map[string]string:
		out := make(Bag, len(val))
		for k, elem := range val {
			out[k] = String(elem)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// ToAny converts a Value to plain Go values (string, int64, float64, bool,
// []any, map[string]any). Used when handing bags to encoders that do not
// know this package.
func ToAny(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	case List:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToAny(elem)
		}
		return out
	case Bag:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = ToAny(elem)
		}
		return out
	default:
		return nil
	}
}
