package pipeline

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/param"
	"github.com/roach88/sansstate/internal/state"
)

// Top-level keys of the bag form.
const (
	KeyFacility   = "facility"
	KeyInstrument = "instrument"
)

// Config is the configuration of one reduction: one State per concern.
//
// States are immutable, so readers share them. The mutex only guards the
// concern map, which Put may update from several goroutines while the
// configuration is assembled.
type Config struct {
	mu         sync.RWMutex
	facility   instrument.Facility
	instrument instrument.Instrument
	states     map[state.Concern]state.State
}

// New returns an empty configuration for inst at fac.
func New(fac instrument.Facility, inst instrument.Instrument) (*Config, error) {
	if _, err := instrument.ParseInstrument(string(inst)); err != nil {
		return nil, err
	}
	if inst.Facility() != fac {
		return nil, fmt.Errorf("instrument %s is not hosted at facility %q", inst, fac)
	}
	return &Config{facility: fac, instrument: inst, states: make(map[state.Concern]state.State)}, nil
}

func (c *Config) Facility() instrument.Facility     { return c.facility }
func (c *Config) Instrument() instrument.Instrument { return c.instrument }

// Put stores s, replacing any state of the same concern.
func (c *Config) Put(s state.State) error {
	if s == nil {
		return errors.New("put: nil state")
	}
	if s.Instrument() != c.instrument {
		return fmt.Errorf("put %s: state is for %s, configuration for %s", s.Concern(), s.Instrument(), c.instrument)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[s.Concern()] = s
	return nil
}

// Get returns the state of concern.
func (c *Config) Get(concern state.Concern) (state.State, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.states[concern]
	return s, ok
}

// Concerns returns the configured concerns, sorted.
func (c *Config) Concerns() []state.Concern {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.states))
}

func get[S state.State](c *Config, concern state.Concern) (S, bool) {
	s, ok := c.Get(concern)
	if !ok {
		var zero S
		return zero, false
	}
	typed, ok := s.(S)
	return typed, ok
}

func (c *Config) Data() (*state.Data, bool)   { return get[*state.Data](c, state.ConcernData) }
func (c *Config) Move() (*state.Move, bool)   { return get[*state.Move](c, state.ConcernMove) }
func (c *Config) Mask() (*state.Mask, bool)   { return get[*state.Mask](c, state.ConcernMask) }
func (c *Config) Scale() (*state.Scale, bool) { return get[*state.Scale](c, state.ConcernScale) }
func (c *Config) Save() (*state.Save, bool)   { return get[*state.Save](c, state.ConcernSave) }

func (c *Config) Compatibility() (*state.Compatibility, bool) {
	return get[*state.Compatibility](c, state.ConcernCompatibility)
}

func (c *Config) Reduction() (*state.Reduction, bool) {
	return get[*state.Reduction](c, state.ConcernReduction)
}

func (c *Config) Wavelength() (*state.Wavelength, bool) {
	return get[*state.Wavelength](c, state.ConcernWavelength)
}

// Clone returns a configuration sharing the (immutable) states but not the
// concern map.
func (c *Config) Clone() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &Config{facility: c.facility, instrument: c.instrument, states: maps.Clone(c.states)}
}

// Validate checks that every mandatory concern is present, that each state
// is valid, and that the states agree with each other. It returns a
// *ValidationError holding every problem found.
func (c *Config) Validate() error {
	var verr ValidationError
	for _, concern := range state.Mandatory() {
		s, ok := c.Get(concern)
		if !ok {
			verr.Missing = append(verr.Missing, concern)
			continue
		}
		if err := s.Validate(); err != nil {
			var se *state.ValidationError
			if !errors.As(err, &se) {
				return fmt.Errorf("validate %s: %w", concern, err)
			}
			verr.States = append(verr.States, se)
		}
	}
	verr.Cross = c.crossCheck()
	if verr.empty() {
		return nil
	}
	return &verr
}

func (c *Config) crossCheck() []param.Problem {
	var out []param.Problem
	m, mok := c.Move()
	r, rok := c.Reduction()
	if mok && rok {
		moveNames := m.DetectorNames()
		for bank, name := range r.DetectorNames() {
			if have, ok := moveNames[bank]; ok && have != name {
				out = append(out, param.Problem{
					Field:   fmt.Sprintf("%s.%s.%s", state.ConcernReduction, state.ReductionDetectorNames, bank),
					Message: fmt.Sprintf("reduction names bank %s %q, move names it %q", bank, name, have),
					Code:    CodeDetectorNames,
				})
			}
		}
	}
	slices.SortFunc(out, func(a, b param.Problem) int { return cmp.Compare(a.Field, b.Field) })
	return out
}

// ToBag returns the nested bag form.
func (c *Config) ToBag() bag.Bag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := bag.Bag{
		KeyFacility:   bag.String(c.facility),
		KeyInstrument: bag.String(c.instrument),
	}
	for concern, s := range c.states {
		out[string(concern)] = s.ToBag()
	}
	return out
}

// Flatten returns the flat bag form consumed by the execution engine.
func (c *Config) Flatten() (bag.Bag, error) {
	return bag.Flatten(c.ToBag())
}

// MarshalJSON renders the nested bag as canonical JSON.
func (c *Config) MarshalJSON() ([]byte, error) {
	return bag.MarshalCanonical(c.ToBag())
}

// Hash returns the content address of the configuration.
func (c *Config) Hash() (string, error) {
	return bag.Hash(bag.DomainPipeline, c.ToBag())
}

// FromBag rehydrates a configuration from its nested or flat bag form.
// Every mandatory concern must be present. States are decoded but not
// validated; call Validate before use.
func FromBag(b bag.Bag) (*Config, error) {
	nested, err := bag.Unflatten(b)
	if err != nil {
		return nil, &state.DeserializationError{Reason: "conflicting keys", Err: err}
	}
	fac, err := enumKey(nested, KeyFacility, func(s string) (instrument.Facility, error) { return instrument.ParseFacility(s) })
	if err != nil {
		return nil, err
	}
	inst, err := enumKey(nested, KeyInstrument, func(s string) (instrument.Instrument, error) { return instrument.ParseInstrument(s) })
	if err != nil {
		return nil, err
	}
	cfg, err := New(fac, inst)
	if err != nil {
		return nil, &state.DeserializationError{Key: KeyInstrument, Reason: "malformed value", Err: err}
	}
	for _, concern := range state.Mandatory() {
		raw, ok := nested[string(concern)]
		if !ok {
			return nil, &state.DeserializationError{Concern: concern, Key: string(concern), Reason: "missing required key"}
		}
		section, ok := raw.(bag.Bag)
		if !ok {
			return nil, &state.DeserializationError{Concern: concern, Key: string(concern), Reason: "malformed value",
				Err: fmt.Errorf("expected bag, got %s", bag.KindOf(raw))}
		}
		s, err := state.Decode(concern, inst, section)
		if err != nil {
			return nil, err
		}
		if err := cfg.Put(s); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Unmarshal decodes JSON in either bag form.
func Unmarshal(data []byte) (*Config, error) {
	b, err := bag.UnmarshalBag(data)
	if err != nil {
		return nil, &state.DeserializationError{Reason: "malformed JSON", Err: err}
	}
	return FromBag(b)
}

func enumKey[T any](b bag.Bag, key string, parse func(string) (T, error)) (T, error) {
	var zero T
	raw, ok := b[key]
	if !ok {
		return zero, &state.DeserializationError{Key: key, Reason: "missing required key"}
	}
	s, ok := raw.(bag.String)
	if !ok {
		return zero, &state.DeserializationError{Key: key, Reason: "malformed value", Err: fmt.Errorf("expected string, got %s", bag.KindOf(raw))}
	}
	v, err := parse(string(s))
	if err != nil {
		return zero, &state.DeserializationError{Key: key, Reason: "malformed value", Err: err}
	}
	return v, nil
}
