package builder_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/builder"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/metadata"
	"github.com/roach88/sansstate/internal/param"
	"github.com/roach88/sansstate/internal/state"
)

func newFactory(t *testing.T, opts ...builder.Option) *builder.Factory {
	t.Helper()
	f, err := builder.NewFactory(builder.DefaultRegistry(), opts...)
	require.NoError(t, err)
	return f
}

func TestMoveBuilderSANS2DDerivesBothBanks(t *testing.T) {
	ctx := context.Background()
	b, err := newFactory(t).MoveBuilder(ctx, instrument.ISIS, instrument.SANS2D, metadata.Handle{})
	require.NoError(t, err)

	m, err := b.BuildMove()
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	names := m.DetectorNames()
	require.Contains(t, names, instrument.HAB)
	require.Contains(t, names, instrument.LAB)
	assert.NotEmpty(t, names[instrument.HAB])
	assert.NotEmpty(t, names[instrument.LAB])
	assert.Equal(t, "front", m.DetectorNamesShort()[instrument.HAB])
}

func TestSettersFailFast(t *testing.T) {
	ctx := context.Background()
	f := newFactory(t)

	r, err := f.ReductionBuilder(ctx, instrument.ISIS, instrument.SANS2D, metadata.Handle{})
	require.NoError(t, err)

	err = r.SetReductionMode("Stacked")
	var te *param.TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, state.ReductionMode, te.Field)
	assert.Equal(t, "unknown member", te.Reason)
	assert.Contains(t, te.Expected, "Merged")

	err = r.Set(state.ReductionMergeScale, bag.String("big"))
	require.ErrorAs(t, err, &te)
	assert.Equal(t, state.ReductionMergeScale, te.Field)

	err = r.Set("merge_sclae", bag.Float(1))
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "unknown field", te.Reason)

	err = r.SetMergeRange(state.Range{Low: 0.2, High: 0.1})
	require.ErrorAs(t, err, &te)
	assert.Equal(t, state.ReductionMergeRange, te.Field)

	require.NoError(t, r.Set(state.ReductionMergeShift, bag.Int(2)))
	assert.Equal(t, bag.Float(2), r.Values()[state.ReductionMergeShift], "ints widen to floats")

	m, err := f.MoveBuilder(ctx, instrument.ISIS, instrument.LOQ, metadata.Handle{})
	require.NoError(t, err)
	err = m.SetHABDetectorRadius(0.3)
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "unknown field", te.Reason)
	assert.NoError(t, m.SetCenterPosition(0.32))
}

func TestRejectedValueLeavesSlotUnchanged(t *testing.T) {
	b, err := builder.NewSaveBuilder(instrument.LOQ)
	require.NoError(t, err)
	require.NoError(t, b.SetFileFormats([]string{"nxcansas"}))
	require.Error(t, b.SetFileFormats([]string{"Nexus", "HDF4"}))

	s, err := b.BuildSave()
	require.NoError(t, err)
	assert.Equal(t, []string{state.FormatNXcanSAS}, s.FileFormats())
}

func TestBuildsAreIndependent(t *testing.T) {
	b, err := builder.NewWavelengthBuilder(instrument.ZOOM)
	require.NoError(t, err)
	require.NoError(t, b.SetRange(state.Range{Low: 1.75, High: 16.5}))
	require.NoError(t, b.SetStep(0.125))
	require.NoError(t, b.SetIntervals([]state.Range{{Low: 2, High: 4}}))

	first, err := b.BuildWavelength()
	require.NoError(t, err)

	require.NoError(t, b.SetStep(0.5))
	require.NoError(t, b.SetIntervals(nil))
	second, err := b.BuildWavelength()
	require.NoError(t, err)

	assert.Equal(t, 0.125, first.Step())
	assert.Len(t, first.Intervals(), 1)
	assert.Equal(t, 0.5, second.Step())
	assert.Empty(t, second.Intervals())
	assert.False(t, first.Equal(second))

	again, err := b.BuildWavelength()
	require.NoError(t, err)
	assert.True(t, second.Equal(again))
}

func TestBuildReportsEveryMissingRequiredField(t *testing.T) {
	b, err := builder.NewWavelengthBuilder(instrument.LOQ)
	require.NoError(t, err)

	_, err = b.Build()
	var ve *state.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has(state.CodeRequired))
	assert.Contains(t, ve.Fields(), state.WavelengthRange)
	assert.Contains(t, ve.Fields(), state.WavelengthStep)
}

func TestMergedReductionNamesMissingBank(t *testing.T) {
	b, err := newFactory(t).ReductionBuilder(context.Background(), instrument.ISIS, instrument.SANS2D, metadata.Handle{})
	require.NoError(t, err)
	require.NoError(t, b.SetDetectorNames(map[instrument.Bank]string{instrument.LAB: "rear-detector"}))
	require.NoError(t, b.SetReductionMode(state.ModeMerged))

	r, err := b.BuildReduction()
	assert.Nil(t, r)
	var ve *state.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, state.ConcernReduction, ve.Concern)
	assert.Contains(t, ve.Error(), "bank HAB")
	assert.Contains(t, ve.Fields(), "detector_names.HAB")
}

func TestReductionBuilderDefaultsAreValid(t *testing.T) {
	ctx := context.Background()
	f := newFactory(t)
	for _, inst := range instrument.All() {
		b, err := f.ReductionBuilder(ctx, instrument.ISIS, inst, metadata.Handle{})
		require.NoError(t, err)
		r, err := b.BuildReduction()
		require.NoError(t, err, inst)
		assert.Equal(t, []instrument.Bank{instrument.LAB}, r.MergeStrategy())
		assert.Equal(t, inst.Banks(), r.AllReductionModes())
	}
}

func TestSeedStartsFromExistingState(t *testing.T) {
	b, err := builder.NewCompatibilityBuilder(instrument.LARMOR)
	require.NoError(t, err)
	require.NoError(t, b.SetUseCompatibilityMode(true))
	require.NoError(t, b.SetTimeRebinString("5,100,1000"))
	original, err := b.BuildCompatibility()
	require.NoError(t, err)

	next, err := builder.NewCompatibilityBuilder(instrument.LARMOR)
	require.NoError(t, err)
	require.NoError(t, next.Seed(original))
	require.NoError(t, next.SetUseCompatibilityMode(false))
	changed, err := next.BuildCompatibility()
	require.NoError(t, err)

	assert.True(t, original.Enabled())
	assert.False(t, changed.Enabled())
	assert.Equal(t, original.TimeRebin(), changed.TimeRebin())

	other, err := builder.NewCompatibilityBuilder(instrument.LOQ)
	require.NoError(t, err)
	assert.Error(t, other.Seed(original), "instrument mismatch")
	save, err := builder.NewSaveBuilder(instrument.LARMOR)
	require.NoError(t, err)
	assert.Error(t, save.Seed(original), "concern mismatch")
}

func TestApplyAcceptsFlatAndNestedKeys(t *testing.T) {
	b, err := builder.NewMaskBuilder(instrument.SANS2D, metadata.Handle{})
	require.NoError(t, err)
	require.NoError(t, b.Apply(bag.Bag{
		"radius.low":  bag.Float(0.04),
		"radius.high": bag.Int(12),
		"phi":         state.Range{Low: -30, High: 30}.Bag(),
		"spectra":     bag.Ints(1, 2),
	}))

	m, err := b.BuildMask()
	require.NoError(t, err)
	r, ok := m.Radius()
	require.True(t, ok)
	assert.Equal(t, state.Range{Low: 0.04, High: 12}, r)
	assert.Equal(t, state.Range{Low: -30, High: 30}, m.Phi())
	assert.Equal(t, "SANS2D_Definition.xml", m.IDFPath())

	err = b.Apply(bag.Bag{"radius": bag.String("wide")})
	assert.True(t, param.IsTypeError(err))
}

func TestMaskBuilderSetters(t *testing.T) {
	b, err := builder.NewMaskBuilder(instrument.LOQ, metadata.Handle{})
	require.NoError(t, err)
	require.NoError(t, b.SetBinMasks([]state.Range{{Low: 100, High: 200}, {Low: 19900, High: 20500}}))
	require.NoError(t, b.SetStrips(instrument.HAB, state.Strips{SingleHorizontal: []int64{3}}))
	require.NoError(t, b.SetBeamStopArmWidth(0.02))
	require.NoError(t, b.SetBeamStopArmAngle(0))
	require.NoError(t, b.SetBeamStopArmPos1(0))
	require.NoError(t, b.SetBeamStopArmPos2(0))
	require.NoError(t, b.SetMaskFiles([]string{"MASK.xml"}))

	m, err := b.BuildMask()
	require.NoError(t, err)
	assert.Len(t, m.BinMasks(), 2)
	assert.Equal(t, []int64{3}, m.Strips(instrument.HAB).SingleHorizontal)
	width, _, _, _, ok := m.BeamStopArm()
	assert.True(t, ok)
	assert.Equal(t, 0.02, width)

	require.NoError(t, b.SetSpectra([]int64{-1}))
	_, err = b.BuildMask()
	assert.True(t, state.IsValidationError(err))
}

func TestDataBuilderDerivesFromHandle(t *testing.T) {
	b, err := newFactory(t).DataBuilder(context.Background(), instrument.ISIS, instrument.SANS2D,
		metadata.Handle{Path: "/archive/SANS2D00022024.nxs"})
	require.NoError(t, err)

	d, err := b.BuildData()
	require.NoError(t, err)
	assert.Equal(t, "/archive/SANS2D00022024.nxs", d.SampleScatter())
	assert.Equal(t, instrument.SANS2D, d.InstrumentName())
	assert.Equal(t, instrument.ISIS, d.Facility())
	n, ok := d.RunNumber()
	assert.True(t, ok)
	assert.Equal(t, int64(22024), n)
	assert.NotContains(t, d.ToBag(), state.DataSampleScatterRunNumber)
}

func TestDataBuilderWithoutHandleNeedsSampleScatter(t *testing.T) {
	b, err := builder.NewDataBuilder(context.Background(), instrument.LOQ, metadata.Handle{})
	require.NoError(t, err)
	_, err = b.BuildData()
	var ve *state.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields(), state.DataSampleScatter)

	require.NoError(t, b.SetSampleScatter("LOQ74044"))
	require.NoError(t, b.SetCanScatter("LOQ74019"))
	require.NoError(t, b.SetCanTransmission("LOQ74020"))
	require.NoError(t, b.SetCanDirect("LOQ74014"))
	d, err := b.BuildData()
	require.NoError(t, err)
	assert.True(t, d.HasCan())
}

func TestScaleBuilderUsesRecordedGeometry(t *testing.T) {
	p := metadata.Static{Geometry: metadata.Geometry{Shape: metadata.ShapeFlatPlate, Thickness: 2, Width: 10, Height: 0}}
	f := newFactory(t, builder.WithProvider(p))

	b, err := f.ScaleBuilder(context.Background(), instrument.ISIS, instrument.LOQ, metadata.Handle{})
	require.NoError(t, err)
	require.NoError(t, b.SetWidth(12))

	s, err := b.BuildScale()
	require.NoError(t, err)
	thickness, ok := s.Thickness()
	assert.True(t, ok)
	assert.Equal(t, 2.0, thickness)
	width, _ := s.Width()
	assert.Equal(t, 12.0, width)
	_, ok = s.Height()
	assert.False(t, ok, "zero geometry means not recorded")
	shape, _ := s.Shape()
	assert.Equal(t, metadata.ShapeFlatPlate, shape)
}

func TestTypedSettersCoverEveryField(t *testing.T) {
	ctx := context.Background()
	f := newFactory(t)

	s, err := f.SaveBuilder(ctx, instrument.ISIS, instrument.ZOOM, metadata.Handle{})
	require.NoError(t, err)
	require.NoError(t, s.SetZeroFreeCorrection(false))
	require.NoError(t, s.SetOutputName("run"))
	require.NoError(t, s.SetOutputNameSuffix("_v2"))
	require.NoError(t, s.SetUseReductionModeAsSuffix(true))
	save, err := s.BuildSave()
	require.NoError(t, err)
	assert.False(t, save.ZeroFreeCorrection())
	assert.Equal(t, "run", save.OutputName())
	assert.Equal(t, "_v2", save.OutputNameSuffix())
	assert.True(t, save.ReductionModeAsSuffix())

	r, err := f.ReductionBuilder(ctx, instrument.ISIS, instrument.LOQ, metadata.Handle{})
	require.NoError(t, err)
	require.NoError(t, r.SetReductionMode(state.ModeAll))
	require.NoError(t, r.SetDimensionality(state.TwoDim))
	require.NoError(t, r.SetMergeFitMode(state.FitScaleOnly))
	require.NoError(t, r.SetMergeScale(1.2))
	require.NoError(t, r.SetMergeShift(-0.01))
	require.NoError(t, r.SetMergeMask(true))
	red, err := r.BuildReduction()
	require.NoError(t, err)
	assert.Equal(t, state.TwoDim, red.Dimensionality())
	assert.Equal(t, state.FitScaleOnly, red.MergeFitMode())
	assert.Equal(t, 1.2, red.MergeScale())
	assert.Equal(t, -0.01, red.MergeShift())
	assert.True(t, red.MergeMask())
	assert.True(t, red.IsMerged())

	m, err := f.MoveBuilder(ctx, instrument.ISIS, instrument.SANS2D, metadata.Handle{})
	require.NoError(t, err)
	require.NoError(t, m.SetCorrection(instrument.HAB, state.Correction{X: 0.001, Rotation: 0.5}))
	require.NoError(t, m.SetSampleOffset(0.053))
	require.NoError(t, m.SetSampleOffsetDirection("z"))
	require.NoError(t, m.SetMonitorNames(map[string]string{"1": "monitor1", "2": "monitor2"}))
	require.NoError(t, m.SetMonitor4Offset(-0.07))
	move, err := m.BuildMove()
	require.NoError(t, err)
	assert.Equal(t, state.Correction{X: 0.001, Rotation: 0.5}, move.Correction(instrument.HAB))
	assert.Equal(t, state.DirectionZ, move.SampleOffsetDirection())
	assert.Equal(t, map[string]string{"1": "monitor1", "2": "monitor2"}, move.MonitorNames())
	offset, _ := move.Float(state.MoveMonitor4Offset)
	assert.Equal(t, -0.07, offset)

	w, err := f.WavelengthBuilder(ctx, instrument.ISIS, instrument.LARMOR, metadata.Handle{})
	require.NoError(t, err)
	require.NoError(t, w.SetRange(state.Range{Low: 0.9, High: 13.5}))
	require.NoError(t, w.SetStep(0.02))
	require.NoError(t, w.SetStepType("log"))
	wl, err := w.BuildWavelength()
	require.NoError(t, err)
	assert.Equal(t, state.StepLog, wl.StepType())
}

func TestMonitorNamesKeepIndexLikeKeys(t *testing.T) {
	m, err := newFactory(t).MoveBuilder(context.Background(), instrument.ISIS, instrument.LOQ, metadata.Handle{})
	require.NoError(t, err)

	names := map[string]string{"0": "monitor0", "1": "monitor1"}
	require.NoError(t, m.SetMonitorNames(names))
	move, err := m.BuildMove()
	require.NoError(t, err)
	assert.Equal(t, names, move.MonitorNames())

	back, err := state.DecodeMove(instrument.LOQ, move.ToBag())
	require.NoError(t, err)
	assert.True(t, move.Equal(back))

	flat, err := bag.Flatten(move.ToBag())
	require.NoError(t, err)
	back, err = state.DecodeMove(instrument.LOQ, flat)
	require.NoError(t, err)
	assert.True(t, move.Equal(back), "flat")
}

func TestMonitorNamesRejectUnflattenableKeys(t *testing.T) {
	m, err := newFactory(t).MoveBuilder(context.Background(), instrument.ISIS, instrument.SANS2D, metadata.Handle{})
	require.NoError(t, err)

	for _, key := range []string{"m.4", ""} {
		err := m.SetMonitorNames(map[string]string{key: "monitor4"})
		var te *param.TypeError
		require.ErrorAs(t, err, &te, "key %q", key)
		assert.Equal(t, state.MoveMonitorNames, te.Field)
	}
	_, err = m.BuildMove()
	require.NoError(t, err, "rejected names leave the slot unchanged")
}

func TestSampleScatterHeldInCanonicalForm(t *testing.T) {
	b, err := builder.NewDataBuilder(context.Background(), instrument.LOQ, metadata.Handle{})
	require.NoError(t, err)

	require.ErrorAs(t, b.SetSampleScatter("/data/\xff/LOQ74044.nxs"), new(*param.TypeError))

	require.NoError(t, b.SetSampleScatter("/data/cafe\u0301/LOQ74044.nxs"))
	d, err := b.BuildData()
	require.NoError(t, err)
	assert.Equal(t, "/data/caf\u00e9/LOQ74044.nxs", d.SampleScatter())
}

func TestApplyRebuildsFlattenedIntervals(t *testing.T) {
	b, err := builder.NewWavelengthBuilder(instrument.LOQ)
	require.NoError(t, err)
	require.NoError(t, b.SetRange(state.Range{Low: 2, High: 14}))
	require.NoError(t, b.SetStep(0.125))
	require.NoError(t, b.Apply(bag.Bag{
		"intervals.0.low":  bag.Float(2),
		"intervals.0.high": bag.Float(4),
		"intervals.1.low":  bag.Float(4),
		"intervals.1.high": bag.Float(8),
	}))

	w, err := b.BuildWavelength()
	require.NoError(t, err)
	assert.Equal(t, []state.Range{{Low: 2, High: 4}, {Low: 4, High: 8}}, w.Intervals())
}
