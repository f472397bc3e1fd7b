package state

import (
	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/param"
)

// Reduction fields.
const (
	ReductionMode           = "reduction_mode"
	ReductionDimensionality = "reduction_dimensionality"
	ReductionMergeFitMode   = "merge_fit_mode"
	ReductionMergeShift     = "merge_shift"
	ReductionMergeScale     = "merge_scale"
	ReductionMergeRange     = "merge_range"
	ReductionMergeMask      = "merge_mask"
	ReductionDetectorNames  = "detector_names"
)

// Reduction modes. LAB and HAB reduce a single bank.
const (
	ModeLAB    = "LAB"
	ModeHAB    = "HAB"
	ModeMerged = "Merged"
	ModeAll    = "All"
)

// Dimensionalities.
const (
	OneDim = "OneDim"
	TwoDim = "TwoDim"
)

// Merge fit modes.
const (
	FitNone      = "None"
	FitScaleOnly = "ScaleOnly"
	FitShiftOnly = "ShiftOnly"
	FitBoth      = "Both"
)

// Reduction validation codes.
const (
	CodeReductionUnnamedBank = "E270"
	CodeReductionMergeBank   = "E271"
	CodeReductionNoHAB       = "E272"
	CodeReductionForeignBank = "E273"
)

var reductionSchema = param.MustSchema(string(ConcernReduction),
	param.NewEnum(ReductionMode, ModeLAB, ModeHAB, ModeMerged, ModeAll).WithDefault(bag.String(ModeLAB)),
	param.NewEnum(ReductionDimensionality, OneDim, TwoDim).WithDefault(bag.String(OneDim)),
	param.NewEnum(ReductionMergeFitMode, FitNone, FitScaleOnly, FitShiftOnly, FitBoth).WithDefault(bag.String(FitNone)),
	param.NewFloat(ReductionMergeShift).WithDefault(bag.Float(0)),
	param.NewFloat(ReductionMergeScale).WithDefault(bag.Float(1)).Must(param.Positive),
	param.NewFloatRange(ReductionMergeRange).Opt(),
	param.NewBool(ReductionMergeMask).WithDefault(bag.Bool(false)),
	param.NewStringMap(ReductionDetectorNames).WithDefault(bag.Bag{}),
)

// Reduction selects which banks are reduced and how they are merged.
type Reduction struct {
	base
}

// DecodeReduction rehydrates a Reduction state.
func DecodeReduction(inst instrument.Instrument, b bag.Bag) (*Reduction, error) {
	s, err := decodeBase(ConcernReduction, inst, reductionSchema, b)
	if err != nil {
		return nil, err
	}
	return &Reduction{s}, nil
}

func (r *Reduction) Mode() string           { return r.str(ReductionMode) }
func (r *Reduction) Dimensionality() string { return r.str(ReductionDimensionality) }
func (r *Reduction) MergeFitMode() string   { return r.str(ReductionMergeFitMode) }
func (r *Reduction) MergeShift() float64    { return r.float(ReductionMergeShift) }
func (r *Reduction) MergeScale() float64    { return r.float(ReductionMergeScale) }
func (r *Reduction) MergeMask() bool        { return r.boolean(ReductionMergeMask) }

// MergeRange returns the q range used to fit the merge, if limited.
func (r *Reduction) MergeRange() (Range, bool) { return r.rangeOf(ReductionMergeRange) }

// DetectorNames returns the bank names known to the reduction.
func (r *Reduction) DetectorNames() map[instrument.Bank]string {
	return bankMap(r.stringMap(ReductionDetectorNames))
}

// IsMerged reports whether both banks are reduced and merged.
func (r *Reduction) IsMerged() bool {
	m := r.Mode()
	return m == ModeMerged || m == ModeAll
}

// AllReductionModes returns the banks that carry a non-empty detector name,
// in canonical bank order.
func (r *Reduction) AllReductionModes() []instrument.Bank {
	names := r.stringMap(ReductionDetectorNames)
	var out []instrument.Bank
	for _, b := range instrument.AllBanks {
		if names[string(b)] != "" {
			out = append(out, b)
		}
	}
	return out
}

// MergeStrategy returns the banks to reduce, in order. Merged and All
// reduce LAB then HAB; a single-bank mode reduces that bank.
func (r *Reduction) MergeStrategy() []instrument.Bank {
	if r.IsMerged() {
		return []instrument.Bank{instrument.LAB, instrument.HAB}
	}
	return []instrument.Bank{instrument.Bank(r.Mode())}
}

// Validate implements State.
func (r *Reduction) Validate() error {
	var ps problems
	named := map[instrument.Bank]bool{}
	for _, b := range r.AllReductionModes() {
		named[b] = true
	}
	names, _ := r.values[ReductionDetectorNames].(bag.Bag)
	_, foreign := bankKeys(names, r.inst)
	for _, k := range foreign {
		ps.add(ReductionDetectorNames+"."+k, CodeReductionForeignBank, "%q is not a detector bank of %s", k, r.inst)
	}

	if r.IsMerged() {
		if r.inst != "" && !r.inst.HasBank(instrument.HAB) {
			ps.add(ReductionMode, CodeReductionNoHAB, "%s reduction needs two banks but %s has only %s", r.Mode(), r.inst, instrument.LAB)
		}
		for _, b := range r.MergeStrategy() {
			if !named[b] {
				ps.add(ReductionDetectorNames+"."+string(b), CodeReductionMergeBank,
					"%s reduction requires a detector name for bank %s", r.Mode(), b)
			}
		}
	} else if b := instrument.Bank(r.Mode()); !named[b] {
		ps.add(ReductionDetectorNames+"."+string(b), CodeReductionUnnamedBank,
			"reduction mode %s references bank %s, which has no detector name", r.Mode(), b)
	}
	return r.validate(ps)
}
