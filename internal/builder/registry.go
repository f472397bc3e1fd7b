package builder

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/metadata"
	"github.com/roach88/sansstate/internal/state"
)

// Key is the dispatch key of a constructor.
type Key struct {
	Facility   instrument.Facility
	Instrument instrument.Instrument
	Concern    state.Concern
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Facility, k.Instrument, k.Concern)
}

func compareKeys(a, b Key) int {
	return cmp.Or(
		cmp.Compare(a.Facility, b.Facility),
		cmp.Compare(a.Instrument, b.Instrument),
		cmp.Compare(a.Concern, b.Concern),
	)
}

// Constructor creates a Builder. The provider is never nil.
type Constructor func(ctx context.Context, inst instrument.Instrument, h metadata.Handle, p metadata.Provider) (Builder, error)

// Registry maps dispatch keys to constructors.
type Registry map[Key]Constructor

// asBuilder drops the concrete type of a typed constructor result, keeping
// a failed construction from yielding a non-nil Builder.
func asBuilder[B Builder](b B, err error) (Builder, error) {
	if err != nil {
		return nil, err
	}
	return b, nil
}

func newData(ctx context.Context, inst instrument.Instrument, h metadata.Handle, _ metadata.Provider) (Builder, error) {
	return asBuilder(NewDataBuilder(ctx, inst, h))
}

func newMove(ctx context.Context, inst instrument.Instrument, h metadata.Handle, p metadata.Provider) (Builder, error) {
	return asBuilder(NewMoveBuilder(ctx, inst, h, p))
}

func newMask(_ context.Context, inst instrument.Instrument, h metadata.Handle, _ metadata.Provider) (Builder, error) {
	return asBuilder(NewMaskBuilder(inst, h))
}

func newScale(ctx context.Context, inst instrument.Instrument, h metadata.Handle, p metadata.Provider) (Builder, error) {
	return asBuilder(NewScaleBuilder(ctx, inst, h, p))
}

func newSave(_ context.Context, inst instrument.Instrument, _ metadata.Handle, _ metadata.Provider) (Builder, error) {
	return asBuilder(NewSaveBuilder(inst))
}

func newCompatibility(_ context.Context, inst instrument.Instrument, _ metadata.Handle, _ metadata.Provider) (Builder, error) {
	return asBuilder(NewCompatibilityBuilder(inst))
}

func newReduction(ctx context.Context, inst instrument.Instrument, h metadata.Handle, p metadata.Provider) (Builder, error) {
	return asBuilder(NewReductionBuilder(ctx, inst, h, p))
}

func newWavelength(_ context.Context, inst instrument.Instrument, _ metadata.Handle, _ metadata.Provider) (Builder, error) {
	return asBuilder(NewWavelengthBuilder(inst))
}

// constructorFor is the exhaustive concern dispatch. Instrument specific
// behaviour lives in the state schemas, so one constructor serves every
// instrument.
func constructorFor(c state.Concern) (Constructor, bool) {
	switch c {
	case state.ConcernCompatibility:
		return newCompatibility, true
	case state.ConcernData:
		return newData, true
	case state.ConcernMask:
		return newMask, true
	case state.ConcernMove:
		return newMove, true
	case state.ConcernReduction:
		return newReduction, true
	case state.ConcernSave:
		return newSave, true
	case state.ConcernScale:
		return newScale, true
	case state.ConcernWavelength:
		return newWavelength, true
	}
	return nil, false
}

// DefaultRegistry returns a fresh registry covering every known instrument
// and concern. Callers may add or replace entries before handing it to
// NewFactory.
func DefaultRegistry() Registry {
	r := make(Registry)
	for _, f := range instrument.Facilities() {
		for _, inst := range instrument.Of(f) {
			for _, c := range state.AllConcerns() {
				if ctor, ok := constructorFor(c); ok {
					r[Key{Facility: f, Instrument: inst, Concern: c}] = ctor
				}
			}
		}
	}
	return r
}

// Keys returns the registered keys in sorted order.
func (r Registry) Keys() []Key {
	return slices.SortedFunc(maps.Keys(r), compareKeys)
}

// SelfCheck verifies that every known instrument has a constructor for
// every mandatory concern, and that no entry names an unknown instrument or
// concern. It returns a *RegistryError listing every gap.
func (r Registry) SelfCheck() error {
	var rerr RegistryError
	for _, inst := range instrument.All() {
		for _, c := range state.Mandatory() {
			k := Key{Facility: inst.Facility(), Instrument: inst, Concern: c}
			if r[k] == nil {
				rerr.Missing = append(rerr.Missing, k)
			}
		}
	}
	for _, k := range r.Keys() {
		_, concernErr := state.ParseConcern(string(k.Concern))
		if !k.Instrument.Valid() || k.Instrument.Facility() != k.Facility || concernErr != nil {
			rerr.Invalid = append(rerr.Invalid, k)
		}
	}
	if len(rerr.Missing) == 0 && len(rerr.Invalid) == 0 {
		return nil
	}
	return &rerr
}
