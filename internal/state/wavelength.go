package state

import (
	"fmt"

	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/param"
)

// Wavelength fields.
const (
	WavelengthRange     = "wavelength_range"
	WavelengthStep      = "wavelength_step"
	WavelengthStepType  = "wavelength_step_type"
	WavelengthIntervals = "intervals"
)

// Step types.
const (
	StepLin = "Lin"
	StepLog = "Log"
)

// Wavelength validation codes.
const (
	CodeWavelengthInterval = "E280"
	CodeWavelengthOutside  = "E281"
)

var wavelengthSchema = param.MustSchema(string(ConcernWavelength),
	param.NewFloatRange(WavelengthRange).Must(param.Positive),
	param.NewFloat(WavelengthStep).Must(param.Positive),
	param.NewEnum(WavelengthStepType, StepLin, StepLog).WithDefault(bag.String(StepLin)),
	param.NewCompositeList(WavelengthIntervals,
		param.NewFloat(param.RangeLow),
		param.NewFloat(param.RangeHigh),
	).WithDefault(bag.List{}),
)

// Wavelength sets the wavelength binning.
type Wavelength struct {
	base
}

// DecodeWavelength rehydrates a Wavelength state.
func DecodeWavelength(inst instrument.Instrument, b bag.Bag) (*Wavelength, error) {
	s, err := decodeBase(ConcernWavelength, inst, wavelengthSchema, b)
	if err != nil {
		return nil, err
	}
	return &Wavelength{s}, nil
}

func (w *Wavelength) Step() float64    { return w.float(WavelengthStep) }
func (w *Wavelength) StepType() string { return w.str(WavelengthStepType) }

// Range returns the full wavelength range.
func (w *Wavelength) Range() Range {
	r, _ := w.rangeOf(WavelengthRange)
	return r
}

// Intervals returns the user wavelength slices.
func (w *Wavelength) Intervals() []Range {
	l, _ := w.values[WavelengthIntervals].(bag.List)
	out := make([]Range, 0, len(l))
	for _, e := range l {
		if r, ok := rangeOf(e); ok {
			out = append(out, r)
		}
	}
	return out
}

// Ranges returns the full range followed by every interval; each is
// reduced separately.
func (w *Wavelength) Ranges() []Range {
	return append([]Range{w.Range()}, w.Intervals()...)
}

// Validate implements State.
func (w *Wavelength) Validate() error {
	var ps problems
	full := w.Range()
	for i, iv := range w.Intervals() {
		field := fmt.Sprintf("%s.%d", WavelengthIntervals, i)
		if iv.Low > iv.High {
			ps.add(field, CodeWavelengthInterval, "interval low %g exceeds high %g", iv.Low, iv.High)
			continue
		}
		if !full.Contains(iv.Low) || !full.Contains(iv.High) {
			ps.add(field, CodeWavelengthOutside, "interval %s lies outside wavelength range %s", iv, full)
		}
	}
	return w.validate(ps)
}
