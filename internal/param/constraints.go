package param

import (
	"fmt"

	"github.com/roach88/sansstate/internal/bag"
)

// Positive requires a Float or every element of a FloatList to be > 0.
func Positive(v bag.Value) error {
	return eachFloat(v, func(f float64) error {
		if f <= 0 {
			return fmt.Errorf("must be positive, got %g", f)
		}
		return nil
	})
}

// NonNegative requires numbers (or every list element) to be >= 0.
func NonNegative(v bag.Value) error {
	switch n := v.(type) {
	case bag.Int:
		if n < 0 {
			return fmt.Errorf("must not be negative, got %d", n)
		}
		return nil
	case bag.List:
		for i, elem := range n {
			if err := NonNegative(elem); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil
	}
	return eachFloat(v, func(f float64) error {
		if f < 0 {
			return fmt.Errorf("must not be negative, got %g", f)
		}
		return nil
	})
}

// NonEmpty requires a non-empty string, list or bag.
func NonEmpty(v bag.Value) error {
	switch val := v.(type) {
	case bag.String:
		if val == "" {
			return fmt.Errorf("must not be empty")
		}
	case bag.List:
		if len(val) == 0 {
			return fmt.Errorf("must not be empty")
		}
	case bag.Bag:
		if len(val) == 0 {
			return fmt.Errorf("must not be empty")
		}
		for _, k := range val.SortedKeys() {
			if s, ok := val[k].(bag.String); ok && s == "" {
				return fmt.Errorf("entry %q must not be empty", k)
			}
		}
	}
	return nil
}

// Unique requires list elements to be pairwise distinct.
func Unique(v bag.Value) error {
	l, ok := v.(bag.List)
	if !ok {
		return nil
	}
	for i := range l {
		for j := i + 1; j < len(l); j++ {
			if bag.Equal(l[i], l[j]) {
				return fmt.Errorf("duplicate entry at positions %d and %d", i, j)
			}
		}
	}
	return nil
}

// Within requires a Float, or both ends of a FloatRange, to lie in [lo, hi].
func Within(lo, hi float64) Constraint {
	return func(v bag.Value) error {
		return eachFloat(v, func(f float64) error {
			if f < lo || f > hi {
				return fmt.Errorf("must lie within [%g, %g], got %g", lo, hi, f)
			}
			return nil
		})
	}
}

func eachFloat(v bag.Value, fn func(float64) error) error {
	switch n := v.(type) {
	case bag.Float:
		return fn(float64(n))
	case bag.Int:
		return fn(float64(n))
	case bag.List:
		for i, elem := range n {
			if err := eachFloat(elem, fn); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
	case bag.Bag:
		for _, k := range []string{RangeLow, RangeHigh} {
			if elem, ok := n[k]; ok {
				if err := eachFloat(elem, fn); err != nil {
					return fmt.Errorf("%s: %w", k, err)
				}
			}
		}
	}
	return nil
}
