package builder

import (
	"fmt"

	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/metadata"
	"github.com/roach88/sansstate/internal/param"
	"github.com/roach88/sansstate/internal/state"
)

// Builder accumulates field values for one State.
type Builder interface {
	Concern() state.Concern
	Instrument() instrument.Instrument

	// Set checks v against the named descriptor and stores it. A nil v
	// restores the default. Unknown names are a *param.TypeError.
	Set(name string, v bag.Value) error

	// Apply sets every key of b, nested or flat, in key order. The first
	// rejected value aborts.
	Apply(b bag.Bag) error

	// Seed replaces every slot with the fields of s.
	Seed(s state.State) error

	// Values returns a copy of the current slots.
	Values() bag.Bag

	// Build decodes and validates a copy of the slots. Later setter calls do
	// not affect the returned State.
	Build() (state.State, error)
}

// slots is the Builder core shared by the typed builders.
type slots struct {
	concern state.Concern
	inst    instrument.Instrument
	schema  *param.Schema
	values  bag.Bag
}

func newSlots(c state.Concern, inst instrument.Instrument) (slots, error) {
	if !inst.Valid() {
		_, err := instrument.ParseInstrument(string(inst))
		return slots{}, err
	}
	schema, err := state.SchemaFor(c, inst)
	if err != nil {
		return slots{}, err
	}
	return slots{concern: c, inst: inst, schema: schema, values: schema.Defaults()}, nil
}

func (s *slots) Concern() state.Concern            { return s.concern }
func (s *slots) Instrument() instrument.Instrument { return s.inst }

func (s *slots) Set(name string, v bag.Value) error {
	checked, err := s.schema.Check(name, v)
	if err != nil {
		return err
	}
	if checked == nil {
		delete(s.values, name)
		return nil
	}
	s.values[name] = checked
	return nil
}

func (s *slots) Apply(b bag.Bag) error {
	nested, err := bag.Unflatten(b)
	if err != nil {
		return fmt.Errorf("apply %s values: %w", s.concern, err)
	}
	for _, k := range nested.SortedKeys() {
		if err := s.Set(k, nested[k]); err != nil {
			return err
		}
	}
	return nil
}

func (s *slots) Seed(st state.State) error {
	if st.Concern() != s.concern {
		return fmt.Errorf("cannot seed %s builder from %s state", s.concern, st.Concern())
	}
	if st.Instrument() != s.inst {
		return fmt.Errorf("cannot seed %s builder for %s from %s state", s.concern, s.inst, st.Instrument())
	}
	s.values = st.Values()
	return nil
}

func (s *slots) Values() bag.Bag {
	return s.values.Clone()
}

func (s *slots) Build() (state.State, error) {
	if missing := s.missing(); len(missing) > 0 {
		return nil, &state.ValidationError{Concern: s.concern, Problems: missing}
	}
	st, err := state.Decode(s.concern, s.inst, s.values.Clone())
	if err != nil {
		return nil, err
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st, nil
}

// missing reports required fields that hold no value.
func (s *slots) missing() []param.Problem {
	var out []param.Problem
	for _, p := range s.schema.Params() {
		if _, ok := s.values[p.Name]; !ok && !p.Optional && p.Default == nil {
			out = append(out, param.Problem{Field: p.Name, Message: "required field is not set", Code: state.CodeRequired})
		}
	}
	return out
}

// setEntry replaces one key of a map-shaped field.
func (s *slots) setEntry(field, key string, v bag.Value) error {
	m, _ := s.values[field].(bag.Bag)
	next := m.Clone()
	next[key] = v
	return s.Set(field, next)
}

// built narrows the result of Build to the concrete State type.
func built[S state.State](st state.State, err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	s, ok := st.(S)
	if !ok {
		return zero, fmt.Errorf("built %T, want %T", st, zero)
	}
	return s, nil
}

func floatList(vals []float64) bag.List {
	return bag.Floats(vals...)
}

func intList(vals []int64) bag.List {
	return bag.Ints(vals...)
}

func stringList(vals []string) bag.List {
	return bag.Strings(vals...)
}

func stringMap(m map[string]string) bag.Bag {
	out := make(bag.Bag, len(m))
	for k, v := range m {
		out[k] = bag.String(v)
	}
	return out
}

func bankMap(m map[instrument.Bank]string) bag.Bag {
	out := make(bag.Bag, len(m))
	for k, v := range m {
		out[string(k)] = bag.String(v)
	}
	return out
}

// handleFor fills in the handle's instrument, or rejects a handle naming a
// different one.
func handleFor(inst instrument.Instrument, h metadata.Handle) (metadata.Handle, error) {
	if h.Instrument == "" {
		h.Instrument = inst
	}
	if h.Instrument != inst {
		return h, fmt.Errorf("handle is for %s, builder for %s", h.Instrument, inst)
	}
	return h, nil
}
