package state

import (
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/param"
)

// State is one validated, immutable facet of a reduction configuration.
type State interface {
	Concern() Concern
	Instrument() instrument.Instrument
	Schema() *param.Schema

	// Validate reports every inconsistency as a *ValidationError, or nil.
	Validate() error

	// ToBag returns the persisted fields as a nested bag. Transient fields
	// are dropped.
	ToBag() bag.Bag

	// Values returns a copy of every held field, transient ones included.
	Values() bag.Bag

	Equal(other State) bool
}

// base holds what every State shares. Concrete States embed it and add
// typed accessors and cross-field checks.
type base struct {
	concern Concern
	inst    instrument.Instrument
	schema  *param.Schema
	values  bag.Bag
}

// decodeBase runs b through schema. Flat keys are accepted and nested
// before decoding.
func decodeBase(c Concern, inst instrument.Instrument, schema *param.Schema, b bag.Bag) (base, error) {
	nested, err := bag.Unflatten(b)
	if err != nil {
		return base{}, &DeserializationError{Concern: c, Reason: "conflicting keys", Err: err}
	}
	values, err := schema.Decode(nested)
	if err != nil {
		var de *param.DecodeError
		if errors.As(err, &de) {
			return base{}, &DeserializationError{Concern: c, Key: de.Key, Reason: de.Reason, Err: de.Err}
		}
		return base{}, &DeserializationError{Concern: c, Reason: "malformed bag", Err: err}
	}
	return base{concern: c, inst: inst, schema: schema, values: values}, nil
}

func (b base) Concern() Concern                  { return b.concern }
func (b base) Instrument() instrument.Instrument { return b.inst }
func (b base) Schema() *param.Schema             { return b.schema }

func (b base) ToBag() bag.Bag {
	return b.schema.Encode(b.values)
}

func (b base) Values() bag.Bag {
	return b.values.Clone()
}

func (b base) Equal(other State) bool {
	if other == nil || other.Concern() != b.concern || other.Instrument() != b.inst {
		return false
	}
	return bag.Equal(b.ToBag(), other.ToBag())
}

// validate runs the schema constraints followed by extra, and wraps any
// failure in a ValidationError.
func (b base) validate(extra problems) error {
	all := b.schema.Validate(b.values)
	all = append(all, extra...)
	if len(all) == 0 {
		return nil
	}
	return &ValidationError{Concern: b.concern, Problems: all}
}

// Has reports whether field holds a value.
func (b base) Has(field string) bool {
	_, ok := b.values[field]
	return ok
}

// Float returns a Float field. It is the accessor for instrument specific
// knobs that have no dedicated method.
func (b base) Float(field string) (float64, bool) {
	f, ok := b.values[field].(bag.Float)
	return float64(f), ok
}

func (b base) float(field string) float64 {
	f, _ := b.Float(field)
	return f
}

func (b base) str(field string) string {
	s, _ := b.values[field].(bag.String)
	return string(s)
}

func (b base) integer(field string) int64 {
	n, _ := b.values[field].(bag.Int)
	return int64(n)
}

func (b base) boolean(field string) bool {
	v, _ := b.values[field].(bag.Bool)
	return bool(v)
}

func (b base) strings(field string) []string {
	return stringsOf(b.values[field])
}

func (b base) floats(field string) []float64 {
	return floatsOf(b.values[field])
}

func (b base) ints(field string) []int64 {
	return intsOf(b.values[field])
}

func (b base) stringMap(field string) map[string]string {
	m, _ := b.values[field].(bag.Bag)
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(bag.String); ok {
			out[k] = string(s)
		}
	}
	return out
}

func (b base) rangeOf(field string) (Range, bool) {
	return rangeOf(b.values[field])
}

// Range is a closed float interval.
type Range struct {
	Low  float64
	High float64
}

// Bag returns the range in its bag form.
func (r Range) Bag() bag.Bag {
	return bag.Bag{param.RangeLow: bag.Float(r.Low), param.RangeHigh: bag.Float(r.High)}
}

// Contains reports whether x lies in [Low, High].
func (r Range) Contains(x float64) bool {
	return x >= r.Low && x <= r.High
}

func (r Range) String() string {
	return fmt.Sprintf("[%g, %g]", r.Low, r.High)
}

func rangeOf(v bag.Value) (Range, bool) {
	m, ok := v.(bag.Bag)
	if !ok {
		return Range{}, false
	}
	lo, lok := m[param.RangeLow].(bag.Float)
	hi, hok := m[param.RangeHigh].(bag.Float)
	if !lok || !hok {
		return Range{}, false
	}
	return Range{Low: float64(lo), High: float64(hi)}, true
}

func stringsOf(v bag.Value) []string {
	l, _ := v.(bag.List)
	out := make([]string, 0, len(l))
	for _, e := range l {
		if s, ok := e.(bag.String); ok {
			out = append(out, string(s))
		}
	}
	return out
}

func floatsOf(v bag.Value) []float64 {
	l, _ := v.(bag.List)
	out := make([]float64, 0, len(l))
	for _, e := range l {
		if f, ok := e.(bag.Float); ok {
			out = append(out, float64(f))
		}
	}
	return out
}

func intsOf(v bag.Value) []int64 {
	l, _ := v.(bag.List)
	out := make([]int64, 0, len(l))
	for _, e := range l {
		if n, ok := e.(bag.Int); ok {
			out = append(out, int64(n))
		}
	}
	return out
}

// bankKeys returns the keys of a bank-keyed bag, sorted. Keys that are not
// banks of inst are returned separately.
func bankKeys(m bag.Bag, inst instrument.Instrument) (known []instrument.Bank, foreign []string) {
	keys := m.SortedKeys()
	for _, k := range keys {
		b, err := instrument.ParseBank(k)
		if err != nil || !inst.HasBank(b) || string(b) != k {
			foreign = append(foreign, k)
			continue
		}
		known = append(known, b)
	}
	sort.Slice(known, func(i, j int) bool { return bankIndex(known[i]) < bankIndex(known[j]) })
	return known, foreign
}

func bankIndex(b instrument.Bank) int {
	for i, x := range instrument.AllBanks {
		if x == b {
			return i
		}
	}
	return len(instrument.AllBanks)
}
