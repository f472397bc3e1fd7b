package builder

import (
	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/state"
)

// WavelengthBuilder builds *state.Wavelength. The range and step have no
// defaults and must be set.
type WavelengthBuilder struct {
	slots
}

var _ Builder = (*WavelengthBuilder)(nil)

func NewWavelengthBuilder(inst instrument.Instrument) (*WavelengthBuilder, error) {
	s, err := newSlots(state.ConcernWavelength, inst)
	if err != nil {
		return nil, err
	}
	return &WavelengthBuilder{s}, nil
}

func (b *WavelengthBuilder) SetRange(r state.Range) error {
	return b.Set(state.WavelengthRange, r.Bag())
}

func (b *WavelengthBuilder) SetStep(v float64) error {
	return b.Set(state.WavelengthStep, bag.Float(v))
}

func (b *WavelengthBuilder) SetStepType(t string) error {
	return b.Set(state.WavelengthStepType, bag.String(t))
}

func (b *WavelengthBuilder) SetIntervals(rs []state.Range) error {
	l := make(bag.List, len(rs))
	for i, r := range rs {
		l[i] = r.Bag()
	}
	return b.Set(state.WavelengthIntervals, l)
}

// BuildWavelength builds and returns the typed state.
func (b *WavelengthBuilder) BuildWavelength() (*state.Wavelength, error) {
	return built[*state.Wavelength](b.Build())
}
