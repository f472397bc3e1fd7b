package metadata

import (
	"context"
	"fmt"

	"github.com/roach88/sansstate/internal/instrument"
)

// defaultNames mirrors the component names in the instrument definitions.
var defaultNames = map[instrument.Instrument]map[instrument.Bank]DetectorName{
	instrument.SANS2D: {
		instrument.LAB: {Full: "rear-detector", Short: "rear"},
		instrument.HAB: {Full: "front-detector", Short: "front"},
	},
	instrument.LOQ: {
		instrument.LAB: {Full: "main-detector-bank", Short: "main"},
		instrument.HAB: {Full: "HAB", Short: "HAB"},
	},
	instrument.LARMOR: {
		instrument.LAB: {Full: "DetectorBench", Short: "DetectorBench"},
	},
	instrument.ZOOM: {
		instrument.LAB: {Full: "rear-detector", Short: "rear"},
	},
}

// Static serves the built-in detector table. Geometry, if set, is returned
// for every handle; the zero Static reports no recorded sample geometry.
type Static struct {
	Geometry Geometry
}

// DetectorNames implements Provider.
func (s Static) DetectorNames(ctx context.Context, h Handle) (map[instrument.Bank]DetectorName, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	names, ok := defaultNames[h.Instrument]
	if !ok {
		return nil, &Error{Instrument: h.Instrument, Source: "static table", Err: fmt.Errorf("no detector definition")}
	}
	out := make(map[instrument.Bank]DetectorName, len(names))
	for b, n := range names {
		out[b] = n
	}
	return out, nil
}

// SampleGeometry implements Provider.
func (s Static) SampleGeometry(ctx context.Context, h Handle) (Geometry, error) {
	if err := ctx.Err(); err != nil {
		return Geometry{}, err
	}
	if !h.Instrument.Valid() {
		return Geometry{}, &Error{Instrument: h.Instrument, Source: "static table", Err: fmt.Errorf("unknown instrument")}
	}
	return s.Geometry, nil
}
