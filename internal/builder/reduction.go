package builder

import (
	"context"
	"fmt"

	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/metadata"
	"github.com/roach88/sansstate/internal/state"
)

// ReductionBuilder builds *state.Reduction.
type ReductionBuilder struct {
	slots
}

var _ Builder = (*ReductionBuilder)(nil)

// NewReductionBuilder starts a Reduction builder with the detector names of
// every bank taken from p.
func NewReductionBuilder(ctx context.Context, inst instrument.Instrument, h metadata.Handle, p metadata.Provider) (*ReductionBuilder, error) {
	s, err := newSlots(state.ConcernReduction, inst)
	if err != nil {
		return nil, err
	}
	if h, err = handleFor(inst, h); err != nil {
		return nil, err
	}
	names, err := p.DetectorNames(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("derive reduction defaults for %s: %w", inst, err)
	}
	full := make(map[instrument.Bank]string, len(names))
	for bank, n := range names {
		full[bank] = n.Full
	}
	b := &ReductionBuilder{s}
	if err := b.SetDetectorNames(full); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *ReductionBuilder) SetReductionMode(mode string) error {
	return b.Set(state.ReductionMode, bag.String(mode))
}

func (b *ReductionBuilder) SetDimensionality(d string) error {
	return b.Set(state.ReductionDimensionality, bag.String(d))
}

func (b *ReductionBuilder) SetMergeFitMode(mode string) error {
	return b.Set(state.ReductionMergeFitMode, bag.String(mode))
}

func (b *ReductionBuilder) SetMergeShift(v float64) error {
	return b.Set(state.ReductionMergeShift, bag.Float(v))
}

func (b *ReductionBuilder) SetMergeScale(v float64) error {
	return b.Set(state.ReductionMergeScale, bag.Float(v))
}

func (b *ReductionBuilder) SetMergeRange(r state.Range) error {
	return b.Set(state.ReductionMergeRange, r.Bag())
}

func (b *ReductionBuilder) SetMergeMask(v bool) error {
	return b.Set(state.ReductionMergeMask, bag.Bool(v))
}

func (b *ReductionBuilder) SetDetectorNames(names map[instrument.Bank]string) error {
	return b.Set(state.ReductionDetectorNames, bankMap(names))
}

// BuildReduction builds and returns the typed state.
func (b *ReductionBuilder) BuildReduction() (*state.Reduction, error) {
	return built[*state.Reduction](b.Build())
}
