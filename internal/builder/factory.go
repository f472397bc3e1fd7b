package builder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"

	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/metadata"
	"github.com/roach88/sansstate/internal/state"
)

// Factory hands out Builders by (facility, instrument, concern).
//
// A Factory holds no mutable state after NewFactory returns and may be
// shared between goroutines; the Builders it returns may not.
type Factory struct {
	registry Registry
	provider metadata.Provider
	logger   *slog.Logger
}

// Option configures a Factory.
type Option func(*Factory)

// WithProvider sets the metadata provider used by constructors.
// Default: metadata.Static{}.
func WithProvider(p metadata.Provider) Option {
	return func(f *Factory) {
		if p != nil {
			f.provider = p
		}
	}
}

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(f *Factory) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFactory copies r, runs its SelfCheck and fails on any gap.
func NewFactory(r Registry, opts ...Option) (*Factory, error) {
	if err := r.SelfCheck(); err != nil {
		return nil, err
	}
	f := &Factory{
		registry: maps.Clone(r),
		provider: metadata.Static{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Provider returns the metadata provider handed to constructors.
func (f *Factory) Provider() metadata.Provider {
	return f.provider
}

// Builder returns a fresh Builder for the triple. Lookup happens before any
// derivation, so an unsupported triple never touches the provider.
func (f *Factory) Builder(ctx context.Context, c state.Concern, fac instrument.Facility, inst instrument.Instrument, h metadata.Handle) (Builder, error) {
	ctor, ok := f.registry[Key{Facility: fac, Instrument: inst, Concern: c}]
	if !ok {
		return nil, &UnsupportedConfigurationError{Facility: fac, Instrument: inst, Concern: c}
	}
	b, err := ctor(ctx, inst, h, f.provider)
	if err != nil {
		f.logger.Warn("builder construction failed",
			"concern", c,
			"instrument", inst,
			"error", err,
		)
		return nil, fmt.Errorf("construct %s builder for %s: %w", c, inst, err)
	}
	f.logger.Debug("builder acquired",
		"concern", c,
		"facility", fac,
		"instrument", inst,
		"path", h.Path,
	)
	return b, nil
}

func acquire[B Builder](ctx context.Context, f *Factory, c state.Concern, fac instrument.Facility, inst instrument.Instrument, h metadata.Handle) (B, error) {
	var zero B
	b, err := f.Builder(ctx, c, fac, inst, h)
	if err != nil {
		return zero, err
	}
	typed, ok := b.(B)
	if !ok {
		return zero, fmt.Errorf("%s constructor for %s returned %T, want %T", c, inst, b, zero)
	}
	return typed, nil
}

func (f *Factory) DataBuilder(ctx context.Context, fac instrument.Facility, inst instrument.Instrument, h metadata.Handle) (*DataBuilder, error) {
	return acquire[*DataBuilder](ctx, f, state.ConcernData, fac, inst, h)
}

func (f *Factory) MoveBuilder(ctx context.Context, fac instrument.Facility, inst instrument.Instrument, h metadata.Handle) (*MoveBuilder, error) {
	return acquire[*MoveBuilder](ctx, f, state.ConcernMove, fac, inst, h)
}

func (f *Factory) MaskBuilder(ctx context.Context, fac instrument.Facility, inst instrument.Instrument, h metadata.Handle) (*MaskBuilder, error) {
	return acquire[*MaskBuilder](ctx, f, state.ConcernMask, fac, inst, h)
}

func (f *Factory) ScaleBuilder(ctx context.Context, fac instrument.Facility, inst instrument.Instrument, h metadata.Handle) (*ScaleBuilder, error) {
	return acquire[*ScaleBuilder](ctx, f, state.ConcernScale, fac, inst, h)
}

func (f *Factory) SaveBuilder(ctx context.Context, fac instrument.Facility, inst instrument.Instrument, h metadata.Handle) (*SaveBuilder, error) {
	return acquire[*SaveBuilder](ctx, f, state.ConcernSave, fac, inst, h)
}

func (f *Factory) CompatibilityBuilder(ctx context.Context, fac instrument.Facility, inst instrument.Instrument, h metadata.Handle) (*CompatibilityBuilder, error) {
	return acquire[*CompatibilityBuilder](ctx, f, state.ConcernCompatibility, fac, inst, h)
}

func (f *Factory) ReductionBuilder(ctx context.Context, fac instrument.Facility, inst instrument.Instrument, h metadata.Handle) (*ReductionBuilder, error) {
	return acquire[*ReductionBuilder](ctx, f, state.ConcernReduction, fac, inst, h)
}

func (f *Factory) WavelengthBuilder(ctx context.Context, fac instrument.Facility, inst instrument.Instrument, h metadata.Handle) (*WavelengthBuilder, error) {
	return acquire[*WavelengthBuilder](ctx, f, state.ConcernWavelength, fac, inst, h)
}
