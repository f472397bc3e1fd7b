package builder

import (
	"context"
	"fmt"

	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/metadata"
	"github.com/roach88/sansstate/internal/state"
)

// ScaleBuilder builds *state.Scale.
type ScaleBuilder struct {
	slots
}

var _ Builder = (*ScaleBuilder)(nil)

// NewScaleBuilder starts a Scale builder. Sample geometry recorded with the
// run fills the *_from_file fields; user values set later take precedence.
func NewScaleBuilder(ctx context.Context, inst instrument.Instrument, h metadata.Handle, p metadata.Provider) (*ScaleBuilder, error) {
	s, err := newSlots(state.ConcernScale, inst)
	if err != nil {
		return nil, err
	}
	if h, err = handleFor(inst, h); err != nil {
		return nil, err
	}
	g, err := p.SampleGeometry(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("derive scale defaults for %s: %w", inst, err)
	}
	b := &ScaleBuilder{s}
	if g.Shape != "" {
		if err := b.SetShapeFromFile(g.Shape); err != nil {
			return nil, err
		}
	}
	for _, d := range []struct {
		v   float64
		set func(float64) error
	}{
		{g.Thickness, b.SetThicknessFromFile},
		{g.Width, b.SetWidthFromFile},
		{g.Height, b.SetHeightFromFile},
	} {
		if d.v > 0 {
			if err := d.set(d.v); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

func (b *ScaleBuilder) SetShape(shape string) error {
	return b.Set(state.ScaleShape, bag.String(shape))
}

func (b *ScaleBuilder) SetThickness(v float64) error {
	return b.Set(state.ScaleThickness, bag.Float(v))
}

func (b *ScaleBuilder) SetWidth(v float64) error {
	return b.Set(state.ScaleWidth, bag.Float(v))
}

func (b *ScaleBuilder) SetHeight(v float64) error {
	return b.Set(state.ScaleHeight, bag.Float(v))
}

func (b *ScaleBuilder) SetScale(v float64) error {
	return b.Set(state.ScaleFactor, bag.Float(v))
}

func (b *ScaleBuilder) SetShapeFromFile(shape string) error {
	return b.Set(state.ScaleShapeFromFile, bag.String(shape))
}

func (b *ScaleBuilder) SetThicknessFromFile(v float64) error {
	return b.Set(state.ScaleThicknessFromFile, bag.Float(v))
}

func (b *ScaleBuilder) SetWidthFromFile(v float64) error {
	return b.Set(state.ScaleWidthFromFile, bag.Float(v))
}

func (b *ScaleBuilder) SetHeightFromFile(v float64) error {
	return b.Set(state.ScaleHeightFromFile, bag.Float(v))
}

// BuildScale builds and returns the typed state.
func (b *ScaleBuilder) BuildScale() (*state.Scale, error) {
	return built[*state.Scale](b.Build())
}
