package builder

import (
	"context"
	"fmt"

	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/metadata"
	"github.com/roach88/sansstate/internal/state"
)

// DataBuilder builds *state.Data.
type DataBuilder struct {
	slots
}

var _ Builder = (*DataBuilder)(nil)

// NewDataBuilder starts a Data builder. Facility and instrument are filled
// in; the handle's data file becomes the sample scatter run and its run
// number is derived.
func NewDataBuilder(_ context.Context, inst instrument.Instrument, h metadata.Handle) (*DataBuilder, error) {
	s, err := newSlots(state.ConcernData, inst)
	if err != nil {
		return nil, err
	}
	b := &DataBuilder{s}
	if err := b.SetFacility(inst.Facility()); err != nil {
		return nil, err
	}
	if err := b.SetInstrument(inst); err != nil {
		return nil, err
	}
	if h.Path != "" {
		if err := b.SetSampleScatter(h.Path); err != nil {
			return nil, err
		}
	}
	if n, err := metadata.RunNumber(h); err == nil {
		if err := b.SetSampleScatterRunNumber(n); err != nil {
			return nil, fmt.Errorf("derive run number: %w", err)
		}
	}
	return b, nil
}

func (b *DataBuilder) SetFacility(f instrument.Facility) error {
	return b.Set(state.DataFacility, bag.String(f))
}

func (b *DataBuilder) SetInstrument(i instrument.Instrument) error {
	return b.Set(state.DataInstrument, bag.String(i))
}

func (b *DataBuilder) SetSampleScatter(path string) error {
	return b.Set(state.DataSampleScatter, bag.String(path))
}

func (b *DataBuilder) SetSampleScatterPeriod(p int64) error {
	return b.Set(state.DataSampleScatterPeriod, bag.Int(p))
}

func (b *DataBuilder) SetSampleTransmission(path string) error {
	return b.Set(state.DataSampleTransmission, bag.String(path))
}

func (b *DataBuilder) SetSampleTransmissionPeriod(p int64) error {
	return b.Set(state.DataSampleTransmissionPeriod, bag.Int(p))
}

func (b *DataBuilder) SetSampleDirect(path string) error {
	return b.Set(state.DataSampleDirect, bag.String(path))
}

func (b *DataBuilder) SetSampleDirectPeriod(p int64) error {
	return b.Set(state.DataSampleDirectPeriod, bag.Int(p))
}

func (b *DataBuilder) SetCanScatter(path string) error {
	return b.Set(state.DataCanScatter, bag.String(path))
}

func (b *DataBuilder) SetCanScatterPeriod(p int64) error {
	return b.Set(state.DataCanScatterPeriod, bag.Int(p))
}

func (b *DataBuilder) SetCanTransmission(path string) error {
	return b.Set(state.DataCanTransmission, bag.String(path))
}

func (b *DataBuilder) SetCanTransmissionPeriod(p int64) error {
	return b.Set(state.DataCanTransmissionPeriod, bag.Int(p))
}

func (b *DataBuilder) SetCanDirect(path string) error {
	return b.Set(state.DataCanDirect, bag.String(path))
}

func (b *DataBuilder) SetCanDirectPeriod(p int64) error {
	return b.Set(state.DataCanDirectPeriod, bag.Int(p))
}

func (b *DataBuilder) SetCalibration(path string) error {
	return b.Set(state.DataCalibration, bag.String(path))
}

func (b *DataBuilder) SetUserFile(path string) error {
	return b.Set(state.DataUserFile, bag.String(path))
}

func (b *DataBuilder) SetSampleScatterRunNumber(n int64) error {
	return b.Set(state.DataSampleScatterRunNumber, bag.Int(n))
}

// BuildData builds and returns the typed state.
func (b *DataBuilder) BuildData() (*state.Data, error) {
	return built[*state.Data](b.Build())
}
