package builder

import (
	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/state"
)

// CompatibilityBuilder builds *state.Compatibility.
type CompatibilityBuilder struct {
	slots
}

var _ Builder = (*CompatibilityBuilder)(nil)

func NewCompatibilityBuilder(inst instrument.Instrument) (*CompatibilityBuilder, error) {
	s, err := newSlots(state.ConcernCompatibility, inst)
	if err != nil {
		return nil, err
	}
	return &CompatibilityBuilder{s}, nil
}

func (b *CompatibilityBuilder) SetUseCompatibilityMode(v bool) error {
	return b.Set(state.CompatibilityMode, bag.Bool(v))
}

func (b *CompatibilityBuilder) SetTimeRebinString(s string) error {
	return b.Set(state.CompatibilityTimeRebin, bag.String(s))
}

func (b *CompatibilityBuilder) SetUseEventSliceOptimisation(v bool) error {
	return b.Set(state.CompatibilityEventSliceOptimal, bag.Bool(v))
}

// BuildCompatibility builds and returns the typed state.
func (b *CompatibilityBuilder) BuildCompatibility() (*state.Compatibility, error) {
	return built[*state.Compatibility](b.Build())
}
