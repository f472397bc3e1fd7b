package builder

import (
	"context"
	"fmt"

	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/metadata"
	"github.com/roach88/sansstate/internal/state"
)

// MoveBuilder builds *state.Move. The instrument specific setters fail with
// an unknown field error on other instruments.
type MoveBuilder struct {
	slots
}

var _ Builder = (*MoveBuilder)(nil)

// NewMoveBuilder starts a Move builder with the full and short detector
// names of every bank taken from p.
func NewMoveBuilder(ctx context.Context, inst instrument.Instrument, h metadata.Handle, p metadata.Provider) (*MoveBuilder, error) {
	s, err := newSlots(state.ConcernMove, inst)
	if err != nil {
		return nil, err
	}
	if h, err = handleFor(inst, h); err != nil {
		return nil, err
	}
	names, err := p.DetectorNames(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("derive move defaults for %s: %w", inst, err)
	}
	full := make(map[instrument.Bank]string, len(names))
	short := make(map[instrument.Bank]string, len(names))
	for bank, n := range names {
		full[bank] = n.Full
		short[bank] = n.Short
	}
	b := &MoveBuilder{s}
	if err := b.SetDetectorNames(full); err != nil {
		return nil, err
	}
	if err := b.SetDetectorNamesShort(short); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *MoveBuilder) SetDetectorNames(names map[instrument.Bank]string) error {
	return b.Set(state.MoveDetectorNames, bankMap(names))
}

func (b *MoveBuilder) SetDetectorNamesShort(names map[instrument.Bank]string) error {
	return b.Set(state.MoveDetectorNamesShort, bankMap(names))
}

// SetCorrections replaces the corrections of every bank.
func (b *MoveBuilder) SetCorrections(cs map[instrument.Bank]state.Correction) error {
	out := make(bag.Bag, len(cs))
	for bank, c := range cs {
		out[string(bank)] = correctionBag(c)
	}
	return b.Set(state.MoveCorrections, out)
}

// SetCorrection replaces the correction of one bank.
func (b *MoveBuilder) SetCorrection(bank instrument.Bank, c state.Correction) error {
	return b.setEntry(state.MoveCorrections, string(bank), correctionBag(c))
}

func (b *MoveBuilder) SetSampleOffset(v float64) error {
	return b.Set(state.MoveSampleOffset, bag.Float(v))
}

func (b *MoveBuilder) SetSampleOffsetDirection(dir string) error {
	return b.Set(state.MoveSampleOffsetDirection, bag.String(dir))
}

func (b *MoveBuilder) SetMonitorNames(names map[string]string) error {
	return b.Set(state.MoveMonitorNames, stringMap(names))
}

// SANS2D.

func (b *MoveBuilder) SetHABDetectorRadius(v float64) error {
	return b.Set(state.MoveHABDetectorRadius, bag.Float(v))
}

func (b *MoveBuilder) SetHABDetectorDefaultSDM(v float64) error {
	return b.Set(state.MoveHABDetectorDefaultSDM, bag.Float(v))
}

func (b *MoveBuilder) SetHABDetectorDefaultXM(v float64) error {
	return b.Set(state.MoveHABDetectorDefaultXM, bag.Float(v))
}

func (b *MoveBuilder) SetLABDetectorDefaultSDM(v float64) error {
	return b.Set(state.MoveLABDetectorDefaultSDM, bag.Float(v))
}

func (b *MoveBuilder) SetHABDetectorX(v float64) error {
	return b.Set(state.MoveHABDetectorX, bag.Float(v))
}

func (b *MoveBuilder) SetHABDetectorZ(v float64) error {
	return b.Set(state.MoveHABDetectorZ, bag.Float(v))
}

func (b *MoveBuilder) SetHABDetectorRotation(v float64) error {
	return b.Set(state.MoveHABDetectorRotation, bag.Float(v))
}

func (b *MoveBuilder) SetLABDetectorX(v float64) error {
	return b.Set(state.MoveLABDetectorX, bag.Float(v))
}

func (b *MoveBuilder) SetLABDetectorZ(v float64) error {
	return b.Set(state.MoveLABDetectorZ, bag.Float(v))
}

// SANS2D and ZOOM.

func (b *MoveBuilder) SetMonitor4Offset(v float64) error {
	return b.Set(state.MoveMonitor4Offset, bag.Float(v))
}

// ZOOM.

func (b *MoveBuilder) SetMonitor5Offset(v float64) error {
	return b.Set(state.MoveMonitor5Offset, bag.Float(v))
}

// LOQ.

func (b *MoveBuilder) SetCenterPosition(v float64) error {
	return b.Set(state.MoveCenterPosition, bag.Float(v))
}

// LARMOR.

func (b *MoveBuilder) SetBenchRotation(v float64) error {
	return b.Set(state.MoveBenchRotation, bag.Float(v))
}

// BuildMove builds and returns the typed state.
func (b *MoveBuilder) BuildMove() (*state.Move, error) {
	return built[*state.Move](b.Build())
}

func correctionBag(c state.Correction) bag.Bag {
	return bag.Bag{
		state.CorrectionX:          bag.Float(c.X),
		state.CorrectionY:          bag.Float(c.Y),
		state.CorrectionZ:          bag.Float(c.Z),
		state.CorrectionRotation:   bag.Float(c.Rotation),
		state.CorrectionSide:       bag.Float(c.Side),
		state.CorrectionRadius:     bag.Float(c.Radius),
		state.CorrectionXTilt:      bag.Float(c.XTilt),
		state.CorrectionYTilt:      bag.Float(c.YTilt),
		state.CorrectionCentrePos1: bag.Float(c.CentrePos1),
		state.CorrectionCentrePos2: bag.Float(c.CentrePos2),
	}
}
