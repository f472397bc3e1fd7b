package pipeline

import (
	"cmp"
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/builder"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/metadata"
	"github.com/roach88/sansstate/internal/state"
)

// Request describes a configuration to assemble.
type Request struct {
	Facility   instrument.Facility
	Instrument instrument.Instrument
	Handle     metadata.Handle

	// Sections holds user values per concern, applied over the derived
	// defaults. A concern without a section is built from defaults alone.
	Sections map[state.Concern]bag.Bag
}

// Assembler builds every mandatory concern of a Request concurrently.
type Assembler struct {
	factory *builder.Factory
	logger  *slog.Logger
	limit   int
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) AssemblerOption {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithConcurrency caps the number of builders run at once. Zero or
// negative means one goroutine per concern.
func WithConcurrency(n int) AssemblerOption {
	return func(a *Assembler) {
		a.limit = n
	}
}

func NewAssembler(f *builder.Factory, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		factory: f,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds and validates a Config.
//
// A rejected value or a failed derivation cancels the remaining builders
// and is returned as is. Validation failures do not cancel: every concern
// is built, then all failures are returned together as a *ValidationError.
func (a *Assembler) Assemble(ctx context.Context, req Request) (*Config, error) {
	cfg, err := New(req.Facility, req.Instrument)
	if err != nil {
		return nil, err
	}
	for c := range req.Sections {
		if _, err := state.ParseConcern(string(c)); err != nil {
			return nil, err
		}
	}

	var (
		mu      sync.Mutex
		invalid []*state.ValidationError
	)
	g, gctx := errgroup.WithContext(ctx)
	if a.limit > 0 {
		g.SetLimit(a.limit)
	}
	for _, concern := range state.Mandatory() {
		section := req.Sections[concern]
		g.Go(func() error {
			s, err := a.build(gctx, req, concern, section)
			var ve *state.ValidationError
			if errors.As(err, &ve) {
				mu.Lock()
				invalid = append(invalid, ve)
				mu.Unlock()
				return nil
			}
			if err != nil {
				return err
			}
			return cfg.Put(s)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(invalid) > 0 {
		slices.SortFunc(invalid, func(x, y *state.ValidationError) int { return cmp.Compare(x.Concern, y.Concern) })
		a.logger.Info("configuration assembled with errors",
			"instrument", req.Instrument,
			"invalid", len(invalid),
		)
		return nil, &ValidationError{States: invalid}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a.logger.Info("configuration assembled",
		"instrument", req.Instrument,
		"concerns", len(cfg.Concerns()),
	)
	return cfg, nil
}

func (a *Assembler) build(ctx context.Context, req Request, concern state.Concern, section bag.Bag) (state.State, error) {
	b, err := a.factory.Builder(ctx, concern, req.Facility, req.Instrument, req.Handle)
	if err != nil {
		return nil, err
	}
	if err := b.Apply(section); err != nil {
		return nil, &SectionError{Concern: concern, Err: err}
	}
	s, err := b.Build()
	if err != nil {
		return nil, err
	}
	a.logger.Debug("state built", "concern", concern, "instrument", req.Instrument)
	return s, nil
}
