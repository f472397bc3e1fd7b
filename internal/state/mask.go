package state

import (
	"fmt"

	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/param"
)

// Mask fields.
const (
	MaskRadius              = "radius"
	MaskBinStart            = "bin_mask_general_start"
	MaskBinStop             = "bin_mask_general_stop"
	MaskPhi                 = "phi"
	MaskUsePhiMirror        = "use_mask_phi_mirror"
	MaskBeamStopArmWidth    = "beam_stop_arm_width"
	MaskBeamStopArmAngle    = "beam_stop_arm_angle"
	MaskBeamStopArmPos1     = "beam_stop_arm_pos1"
	MaskBeamStopArmPos2     = "beam_stop_arm_pos2"
	MaskFiles               = "mask_files"
	MaskSpectra             = "spectra"
	MaskDetectors           = "detectors"
	MaskIDFPath             = "idf_path"
	StripSingleHorizontal   = "single_horizontal_strip"
	StripSingleVertical     = "single_vertical_strip"
	StripRangeHorizontalLow = "range_horizontal_strip_start"
	StripRangeHorizontalHi  = "range_horizontal_strip_stop"
	StripRangeVerticalLow   = "range_vertical_strip_start"
	StripRangeVerticalHi    = "range_vertical_strip_stop"
)

// Mask validation codes.
const (
	CodeMaskLength      = "E230"
	CodeMaskOrder       = "E231"
	CodeMaskBeamStop    = "E232"
	CodeMaskForeignBank = "E233"
	CodeMaskFileName    = "E234"
)

func ints(name string) param.Param {
	return param.NewIntList(name).WithDefault(bag.List{}).Must(param.NonNegative)
}

var stripFields = []param.Param{
	ints(StripSingleHorizontal),
	ints(StripSingleVertical),
	ints(StripRangeHorizontalLow),
	ints(StripRangeHorizontalHi),
	ints(StripRangeVerticalLow),
	ints(StripRangeVerticalHi),
}

var maskSchema = param.MustSchema(string(ConcernMask),
	param.NewFloatRange(MaskRadius).Opt().Must(param.NonNegative),
	param.NewFloatList(MaskBinStart).WithDefault(bag.List{}),
	param.NewFloatList(MaskBinStop).WithDefault(bag.List{}),
	param.NewFloatRange(MaskPhi).WithDefault(Range{Low: -90, High: 90}.Bag()).Must(param.Within(-90, 90)),
	param.NewBool(MaskUsePhiMirror).WithDefault(bag.Bool(true)),
	param.NewFloat(MaskBeamStopArmWidth).Opt().Must(param.NonNegative),
	param.NewFloat(MaskBeamStopArmAngle).Opt(),
	param.NewFloat(MaskBeamStopArmPos1).Opt(),
	param.NewFloat(MaskBeamStopArmPos2).Opt(),
	param.NewStringList(MaskFiles).WithDefault(bag.List{}).Must(param.Unique),
	ints(MaskSpectra),
	param.NewCompositeMap(MaskDetectors, stripFields...).WithDefault(bag.Bag{}),
	param.NewString(MaskIDFPath).Derived(),
)

// Strips is the strip masking of one detector bank.
type Strips struct {
	SingleHorizontal     []int64
	SingleVertical       []int64
	RangeHorizontalStart []int64
	RangeHorizontalStop  []int64
	RangeVerticalStart   []int64
	RangeVerticalStop    []int64
}

// Mask selects detector regions, time bins and angles to exclude.
type Mask struct {
	base
}

// DecodeMask rehydrates a Mask state.
func DecodeMask(inst instrument.Instrument, b bag.Bag) (*Mask, error) {
	s, err := decodeBase(ConcernMask, inst, maskSchema, b)
	if err != nil {
		return nil, err
	}
	return &Mask{s}, nil
}

// Radius returns the radius mask, if any.
func (m *Mask) Radius() (Range, bool) { return m.rangeOf(MaskRadius) }

// Phi returns the accepted azimuthal range.
func (m *Mask) Phi() Range {
	r, _ := m.rangeOf(MaskPhi)
	return r
}

func (m *Mask) UsePhiMirror() bool  { return m.boolean(MaskUsePhiMirror) }
func (m *Mask) MaskFiles() []string { return m.strings(MaskFiles) }
func (m *Mask) Spectra() []int64    { return m.ints(MaskSpectra) }
func (m *Mask) IDFPath() string     { return m.str(MaskIDFPath) }

// BinMasks returns the general time bin masks as ranges.
func (m *Mask) BinMasks() []Range {
	start, stop := m.floats(MaskBinStart), m.floats(MaskBinStop)
	out := make([]Range, 0, len(start))
	for i := 0; i < len(start) && i < len(stop); i++ {
		out = append(out, Range{Low: start[i], High: stop[i]})
	}
	return out
}

// BeamStopArm returns width, angle and the arm origin, if the arm is masked.
func (m *Mask) BeamStopArm() (width, angle, pos1, pos2 float64, ok bool) {
	if !m.Has(MaskBeamStopArmWidth) {
		return 0, 0, 0, 0, false
	}
	return m.float(MaskBeamStopArmWidth), m.float(MaskBeamStopArmAngle),
		m.float(MaskBeamStopArmPos1), m.float(MaskBeamStopArmPos2), true
}

// Strips returns the strip masks of bank.
func (m *Mask) Strips(bank instrument.Bank) Strips {
	all, _ := m.values[MaskDetectors].(bag.Bag)
	d, _ := all[string(bank)].(bag.Bag)
	return Strips{
		SingleHorizontal:     intsOf(d[StripSingleHorizontal]),
		SingleVertical:       intsOf(d[StripSingleVertical]),
		RangeHorizontalStart: intsOf(d[StripRangeHorizontalLow]),
		RangeHorizontalStop:  intsOf(d[StripRangeHorizontalHi]),
		RangeVerticalStart:   intsOf(d[StripRangeVerticalLow]),
		RangeVerticalStop:    intsOf(d[StripRangeVerticalHi]),
	}
}

// Validate implements State.
func (m *Mask) Validate() error {
	var ps problems

	start, stop := m.floats(MaskBinStart), m.floats(MaskBinStop)
	if len(start) != len(stop) {
		ps.add(MaskBinStop, CodeMaskLength, "%d bin mask starts but %d stops", len(start), len(stop))
	} else {
		for i := range start {
			if start[i] >= stop[i] {
				ps.add(fmt.Sprintf("%s.%d", MaskBinStart, i), CodeMaskOrder, "start %g must be below stop %g", start[i], stop[i])
			}
		}
	}

	arm := []string{MaskBeamStopArmWidth, MaskBeamStopArmAngle, MaskBeamStopArmPos1, MaskBeamStopArmPos2}
	set := 0
	for _, f := range arm {
		if m.Has(f) {
			set++
		}
	}
	if set != 0 && set != len(arm) {
		for _, f := range arm {
			if !m.Has(f) {
				ps.add(f, CodeMaskBeamStop, "beam stop arm needs width, angle, pos1 and pos2 together")
			}
		}
	}

	for i, f := range m.MaskFiles() {
		if f == "" {
			ps.add(fmt.Sprintf("%s.%d", MaskFiles, i), CodeMaskFileName, "mask file name is empty")
		}
	}

	detectors, _ := m.values[MaskDetectors].(bag.Bag)
	_, foreign := bankKeys(detectors, m.inst)
	for _, k := range foreign {
		ps.add(MaskDetectors+"."+k, CodeMaskForeignBank, "%q is not a detector bank of %s", k, m.inst)
	}
	for _, k := range detectors.SortedKeys() {
		s := m.Strips(instrument.Bank(k))
		checkStripRanges(&ps, MaskDetectors+"."+k, StripRangeHorizontalLow, s.RangeHorizontalStart, s.RangeHorizontalStop)
		checkStripRanges(&ps, MaskDetectors+"."+k, StripRangeVerticalLow, s.RangeVerticalStart, s.RangeVerticalStop)
	}
	return m.validate(ps)
}

func checkStripRanges(ps *problems, path, field string, start, stop []int64) {
	if len(start) != len(stop) {
		ps.add(path+"."+field, CodeMaskLength, "%d strip starts but %d stops", len(start), len(stop))
		return
	}
	for i := range start {
		if start[i] > stop[i] {
			ps.add(fmt.Sprintf("%s.%s.%d", path, field, i), CodeMaskOrder, "strip start %d exceeds stop %d", start[i], stop[i])
		}
	}
}
