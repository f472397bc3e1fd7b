package metadata

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/roach88/sansstate/internal/instrument"
)

// Handle identifies raw data for derivation. Only Instrument is required.
type Handle struct {
	Instrument instrument.Instrument
	// Path is the data file the configuration will reduce, if known.
	Path string
	// Run overrides the run number parsed from Path when > 0.
	Run int64
}

// DetectorName holds the full and short component names of a bank.
type DetectorName struct {
	Full  string `yaml:"name" validate:"required"`
	Short string `yaml:"short" validate:"required"`
}

// Sample shapes recorded in data files.
const (
	ShapeCylinder  = "Cylinder"
	ShapeFlatPlate = "FlatPlate"
	ShapeDisc      = "Disc"
)

// Geometry is the sample geometry recorded with a run. Zero values mean
// "not recorded".
type Geometry struct {
	Shape     string  `yaml:"shape" validate:"omitempty,oneof=Cylinder FlatPlate Disc"`
	Thickness float64 `yaml:"thickness" validate:"gte=0"`
	Width     float64 `yaml:"width" validate:"gte=0"`
	Height    float64 `yaml:"height" validate:"gte=0"`
}

// Provider is the instrument metadata collaborator.
type Provider interface {
	// DetectorNames returns the bank to component name mapping for the
	// instrument of h.
	DetectorNames(ctx context.Context, h Handle) (map[instrument.Bank]DetectorName, error)

	// SampleGeometry returns the sample geometry recorded for h.
	SampleGeometry(ctx context.Context, h Handle) (Geometry, error)
}

// Error reports a failed metadata lookup.
type Error struct {
	Instrument instrument.Instrument
	Source     string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("metadata for %s from %s: %v", e.Instrument, e.Source, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var runDigits = regexp.MustCompile(`(\d+)$`)

// RunNumber returns h.Run if set, else the trailing digits of the data file
// name ("SANS2D00022024.nxs" -> 22024).
func RunNumber(h Handle) (int64, error) {
	if h.Run > 0 {
		return h.Run, nil
	}
	if h.Path == "" {
		return 0, fmt.Errorf("no run number: handle has neither run nor path")
	}
	base := filepath.Base(h.Path)
	base = base[:len(base)-len(filepath.Ext(base))]
	m := runDigits.FindStringSubmatch(base)
	if m == nil {
		return 0, fmt.Errorf("no run number in file name %q", filepath.Base(h.Path))
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("run number in %q: %w", filepath.Base(h.Path), err)
	}
	return n, nil
}
