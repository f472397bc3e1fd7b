package builder

import (
	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/metadata"
	"github.com/roach88/sansstate/internal/state"
)

// MaskBuilder builds *state.Mask.
type MaskBuilder struct {
	slots
}

var _ Builder = (*MaskBuilder)(nil)

// NewMaskBuilder starts a Mask builder. The instrument definition file of
// the handle is recorded for strip masking.
func NewMaskBuilder(inst instrument.Instrument, h metadata.Handle) (*MaskBuilder, error) {
	s, err := newSlots(state.ConcernMask, inst)
	if err != nil {
		return nil, err
	}
	if h, err = handleFor(inst, h); err != nil {
		return nil, err
	}
	b := &MaskBuilder{s}
	if err := b.SetIDFPath(string(h.Instrument) + "_Definition.xml"); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *MaskBuilder) SetRadius(r state.Range) error {
	return b.Set(state.MaskRadius, r.Bag())
}

func (b *MaskBuilder) SetBinMaskGeneralStart(v []float64) error {
	return b.Set(state.MaskBinStart, floatList(v))
}

func (b *MaskBuilder) SetBinMaskGeneralStop(v []float64) error {
	return b.Set(state.MaskBinStop, floatList(v))
}

// SetBinMasks sets the start and stop lists from ranges.
func (b *MaskBuilder) SetBinMasks(rs []state.Range) error {
	start := make([]float64, len(rs))
	stop := make([]float64, len(rs))
	for i, r := range rs {
		start[i], stop[i] = r.Low, r.High
	}
	if err := b.SetBinMaskGeneralStart(start); err != nil {
		return err
	}
	return b.SetBinMaskGeneralStop(stop)
}

func (b *MaskBuilder) SetPhi(r state.Range) error {
	return b.Set(state.MaskPhi, r.Bag())
}

func (b *MaskBuilder) SetUsePhiMirror(v bool) error {
	return b.Set(state.MaskUsePhiMirror, bag.Bool(v))
}

func (b *MaskBuilder) SetBeamStopArmWidth(v float64) error {
	return b.Set(state.MaskBeamStopArmWidth, bag.Float(v))
}

func (b *MaskBuilder) SetBeamStopArmAngle(v float64) error {
	return b.Set(state.MaskBeamStopArmAngle, bag.Float(v))
}

func (b *MaskBuilder) SetBeamStopArmPos1(v float64) error {
	return b.Set(state.MaskBeamStopArmPos1, bag.Float(v))
}

func (b *MaskBuilder) SetBeamStopArmPos2(v float64) error {
	return b.Set(state.MaskBeamStopArmPos2, bag.Float(v))
}

func (b *MaskBuilder) SetMaskFiles(files []string) error {
	return b.Set(state.MaskFiles, stringList(files))
}

func (b *MaskBuilder) SetSpectra(spectra []int64) error {
	return b.Set(state.MaskSpectra, intList(spectra))
}

// SetStrips replaces the strip masks of one bank.
func (b *MaskBuilder) SetStrips(bank instrument.Bank, s state.Strips) error {
	return b.setEntry(state.MaskDetectors, string(bank), bag.Bag{
		state.StripSingleHorizontal:   intList(s.SingleHorizontal),
		state.StripSingleVertical:     intList(s.SingleVertical),
		state.StripRangeHorizontalLow: intList(s.RangeHorizontalStart),
		state.StripRangeHorizontalHi:  intList(s.RangeHorizontalStop),
		state.StripRangeVerticalLow:   intList(s.RangeVerticalStart),
		state.StripRangeVerticalHi:    intList(s.RangeVerticalStop),
	})
}

func (b *MaskBuilder) SetIDFPath(path string) error {
	return b.Set(state.MaskIDFPath, bag.String(path))
}

// BuildMask builds and returns the typed state.
func (b *MaskBuilder) BuildMask() (*state.Mask, error) {
	return built[*state.Mask](b.Build())
}
