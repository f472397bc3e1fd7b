package builder

import (
	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/state"
)

// SaveBuilder builds *state.Save.
type SaveBuilder struct {
	slots
}

var _ Builder = (*SaveBuilder)(nil)

func NewSaveBuilder(inst instrument.Instrument) (*SaveBuilder, error) {
	s, err := newSlots(state.ConcernSave, inst)
	if err != nil {
		return nil, err
	}
	return &SaveBuilder{s}, nil
}

func (b *SaveBuilder) SetFileFormats(formats []string) error {
	return b.Set(state.SaveFileFormat, stringList(formats))
}

func (b *SaveBuilder) SetZeroFreeCorrection(v bool) error {
	return b.Set(state.SaveZeroFreeCorrection, bag.Bool(v))
}

func (b *SaveBuilder) SetOutputName(name string) error {
	return b.Set(state.SaveOutputName, bag.String(name))
}

func (b *SaveBuilder) SetOutputNameSuffix(suffix string) error {
	return b.Set(state.SaveOutputNameSuffix, bag.String(suffix))
}

func (b *SaveBuilder) SetUseReductionModeAsSuffix(v bool) error {
	return b.Set(state.SaveUseReductionModeAsSuffix, bag.Bool(v))
}

// BuildSave builds and returns the typed state.
func (b *SaveBuilder) BuildSave() (*state.Save, error) {
	return built[*state.Save](b.Build())
}
