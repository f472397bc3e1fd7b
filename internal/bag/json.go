package bag

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MarshalJSON implements json.Marshaler using the canonical encoding.
func (b Bag) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(b)
}

// MarshalJSON implements json.Marshaler using the canonical encoding.
func (l List) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(l)
}

// MarshalJSON keeps the fraction part so the value decodes as a Float.
func (f Float) MarshalJSON() ([]byte, error) {
	s, err := formatFloat(float64(f))
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// UnmarshalJSON implements json.Unmarshaler for Bag.
func (b *Bag) UnmarshalJSON(data []byte) error {
	v, err := Unmarshal(data)
	if err != nil {
		return err
	}
	obj, ok := v.(Bag)
	if !ok {
		return fmt.Errorf("expected JSON object, got %s", KindOf(v))
	}
	*b = obj
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for List.
func (l *List) UnmarshalJSON(data []byte) error {
	v, err := Unmarshal(data)
	if err != nil {
		return err
	}
	arr, ok := v.(List)
	if !ok {
		return fmt.Errorf("expected JSON array, got %s", KindOf(v))
	}
	*l = arr
	return nil
}

// Unmarshal decodes JSON into a Value. Numbers containing '.', 'e' or 'E'
// become Float, all others Int. JSON null is rejected.
func Unmarshal(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return fromDecoded(raw)
}

// UnmarshalBag decodes a JSON object into a Bag.
func UnmarshalBag(data []byte) (Bag, error) {
	var b Bag
	if err := b.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return b, nil
}

func fromDecoded(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in a property bag")
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case json.Number:
		s := string(val)
		if strings.ContainsAny(s, ".eE") {
			f, err := val.Float64()
			if err != nil {
				return nil, fmt.Errorf("invalid float %s: %w", s, err)
			}
			return Float(f), nil
		}
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("number out of int64 range: %s", s)
		}
		return Int(n), nil
	case []any:
		out := make(List, len(val))
		for i, elem := range val {
			bv, err := fromDecoded(elem)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			out[i] = bv
		}
		return out, nil
	case map[string]any:
		out := make(Bag, len(val))
		for k, elem := range val {
			bv, err := fromDecoded(elem)
			if err != nil {
				return nil, fmt.Errorf("bag[%q]: %w", k, err)
			}
			out[k] = bv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported decoded type: %T", v)
	}
}
