package testutil

import (
	"context"

	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/metadata"
	"github.com/roach88/sansstate/internal/state"
)

// StateBags returns one valid nested bag per concern for inst, the shape a
// user configuration file would carry.
//
// Every bag decodes and validates; tests mutate copies to provoke failures.
func StateBags(inst instrument.Instrument) map[state.Concern]bag.Bag {
	names, err := metadata.Static{}.DetectorNames(context.Background(), metadata.Handle{Instrument: inst})
	if err != nil {
		panic(err)
	}
	full, short := bag.Bag{}, bag.Bag{}
	for b, n := range names {
		full[string(b)] = bag.String(n.Full)
		short[string(b)] = bag.String(n.Short)
	}

	mode := state.ModeLAB
	if inst.HasBank(instrument.HAB) {
		mode = state.ModeMerged
	}

	return map[state.Concern]bag.Bag{
		state.ConcernData: bag.Of(
			bag.P(state.DataFacility, bag.String(inst.Facility())),
			bag.P(state.DataInstrument, bag.String(inst)),
			bag.P(state.DataSampleScatter, bag.String(string(inst)+"00022024.nxs")),
			bag.P(state.DataSampleTransmission, bag.String(string(inst)+"00022041.nxs")),
			bag.P(state.DataSampleDirect, bag.String(string(inst)+"00022048.nxs")),
		),
		state.ConcernMove: bag.Of(
			bag.P(state.MoveDetectorNames, full),
			bag.P(state.MoveDetectorNamesShort, short),
			bag.P(state.MoveCorrections, bag.Bag{
				string(instrument.LAB): bag.Of(bag.P(state.CorrectionX, bag.Float(-0.0008)), bag.P(state.CorrectionZ, bag.Float(0.0583))),
			}),
			bag.P(state.MoveSampleOffset, bag.Float(0.053)),
		),
		state.ConcernMask: bag.Of(
			bag.P(state.MaskRadius, bag.Of(bag.P("low", bag.Float(0.038)), bag.P("high", bag.Float(100.0)))),
			bag.P(state.MaskBinStart, bag.Floats(13000)),
			bag.P(state.MaskBinStop, bag.Floats(15750)),
			bag.P(state.MaskSpectra, bag.Ints(1, 2, 3)),
			bag.P(state.MaskDetectors, bag.Bag{
				string(instrument.LAB): bag.Of(
					bag.P(state.StripSingleVertical, bag.Ints(191, 0)),
					bag.P(state.StripRangeHorizontalLow, bag.Ints(190)),
					bag.P(state.StripRangeHorizontalHi, bag.Ints(191)),
				),
			}),
		),
		state.ConcernScale: bag.Of(
			bag.P(state.ScaleShape, bag.String(metadata.ShapeDisc)),
			bag.P(state.ScaleThickness, bag.Float(1.0)),
			bag.P(state.ScaleWidth, bag.Float(8.0)),
			bag.P(state.ScaleHeight, bag.Float(8.0)),
			bag.P(state.ScaleFactor, bag.Float(0.074)),
		),
		state.ConcernSave: bag.Of(
			bag.P(state.SaveFileFormat, bag.Strings(state.FormatNexus, state.FormatCanSAS)),
			bag.P(state.SaveOutputName, bag.String("reduced")),
		),
		state.ConcernCompatibility: bag.Of(
			bag.P(state.CompatibilityMode, bag.Bool(true)),
			bag.P(state.CompatibilityTimeRebin, bag.String("5.5,45.5,50.0,50.0,1000.0")),
		),
		state.ConcernReduction: bag.Of(
			bag.P(state.ReductionMode, bag.String(mode)),
			bag.P(state.ReductionMergeFitMode, bag.String(state.FitBoth)),
			bag.P(state.ReductionMergeRange, bag.Of(bag.P("low", bag.Float(0.08)), bag.P("high", bag.Float(0.15)))),
			bag.P(state.ReductionDetectorNames, full.Clone()),
		),
		state.ConcernWavelength: bag.Of(
			bag.P(state.WavelengthRange, bag.Of(bag.P("low", bag.Float(2.0)), bag.P("high", bag.Float(14.0)))),
			bag.P(state.WavelengthStep, bag.Float(0.125)),
			bag.P(state.WavelengthStepType, bag.String(state.StepLin)),
			bag.P(state.WavelengthIntervals, bag.List{
				bag.Of(bag.P("low", bag.Float(2.0)), bag.P("high", bag.Float(4.0))),
				bag.Of(bag.P("low", bag.Float(4.0)), bag.P("high", bag.Float(8.0))),
			}),
		),
	}
}

// States decodes StateBags(inst). It panics on failure, so fixtures that
// drift from their schemas fail loudly.
func States(inst instrument.Instrument) map[state.Concern]state.State {
	out := make(map[state.Concern]state.State)
	for c, b := range StateBags(inst) {
		s, err := state.Decode(c, inst, b)
		if err != nil {
			panic(err)
		}
		out[c] = s
	}
	return out
}
