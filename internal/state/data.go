package state

import (
	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/param"
)

// Data fields.
const (
	DataFacility                 = "facility"
	DataInstrument               = "instrument"
	DataSampleScatter            = "sample_scatter"
	DataSampleScatterPeriod      = "sample_scatter_period"
	DataSampleTransmission       = "sample_transmission"
	DataSampleTransmissionPeriod = "sample_transmission_period"
	DataSampleDirect             = "sample_direct"
	DataSampleDirectPeriod       = "sample_direct_period"
	DataCanScatter               = "can_scatter"
	DataCanScatterPeriod         = "can_scatter_period"
	DataCanTransmission          = "can_transmission"
	DataCanTransmissionPeriod    = "can_transmission_period"
	DataCanDirect                = "can_direct"
	DataCanDirectPeriod          = "can_direct_period"
	DataCalibration              = "calibration"
	DataUserFile                 = "user_file"
	DataSampleScatterRunNumber   = "sample_scatter_run_number"
)

// Data validation codes.
const (
	CodeDataUnpaired     = "E210"
	CodeDataNoCanScatter = "E211"
	CodeDataFacility     = "E212"
)

// AllPeriods selects every period of a multi-period file.
const AllPeriods = 0

func period(name string) param.Param {
	return param.NewInt(name).WithDefault(bag.Int(AllPeriods)).Must(param.NonNegative)
}

var dataSchema = param.MustSchema(string(ConcernData),
	param.NewEnum(DataFacility, instrument.FacilityNames()...),
	param.NewEnum(DataInstrument, instrument.Names()...),
	param.NewString(DataSampleScatter).Must(param.NonEmpty),
	period(DataSampleScatterPeriod),
	param.NewString(DataSampleTransmission).Opt(),
	period(DataSampleTransmissionPeriod),
	param.NewString(DataSampleDirect).Opt(),
	period(DataSampleDirectPeriod),
	param.NewString(DataCanScatter).Opt(),
	period(DataCanScatterPeriod),
	param.NewString(DataCanTransmission).Opt(),
	period(DataCanTransmissionPeriod),
	param.NewString(DataCanDirect).Opt(),
	period(DataCanDirectPeriod),
	param.NewString(DataCalibration).Opt(),
	param.NewString(DataUserFile).Opt(),
	param.NewInt(DataSampleScatterRunNumber).Derived(),
)

// Data names the run files of a reduction.
type Data struct {
	base
}

// DecodeData rehydrates a Data state.
func DecodeData(inst instrument.Instrument, b bag.Bag) (*Data, error) {
	s, err := decodeBase(ConcernData, inst, dataSchema, b)
	if err != nil {
		return nil, err
	}
	return &Data{s}, nil
}

func (d *Data) Facility() instrument.Facility         { return instrument.Facility(d.str(DataFacility)) }
func (d *Data) InstrumentName() instrument.Instrument { return instrument.Instrument(d.str(DataInstrument)) }
func (d *Data) SampleScatter() string                 { return d.str(DataSampleScatter) }
func (d *Data) SampleScatterPeriod() int64            { return d.integer(DataSampleScatterPeriod) }
func (d *Data) SampleTransmission() string            { return d.str(DataSampleTransmission) }
func (d *Data) SampleDirect() string                  { return d.str(DataSampleDirect) }
func (d *Data) CanScatter() string                    { return d.str(DataCanScatter) }
func (d *Data) CanTransmission() string               { return d.str(DataCanTransmission) }
func (d *Data) CanDirect() string                     { return d.str(DataCanDirect) }
func (d *Data) Calibration() string                   { return d.str(DataCalibration) }
func (d *Data) UserFile() string                      { return d.str(DataUserFile) }

// HasCan reports whether a can (background) run is configured.
func (d *Data) HasCan() bool {
	return d.Has(DataCanScatter)
}

// RunNumber returns the sample scatter run number derived when the state
// was built. It is not persisted, so a rehydrated state reports false.
func (d *Data) RunNumber() (int64, bool) {
	n, ok := d.values[DataSampleScatterRunNumber].(bag.Int)
	return int64(n), ok
}

// Validate implements State.
func (d *Data) Validate() error {
	var ps problems
	pair := func(trans, direct string) {
		switch {
		case d.Has(trans) && !d.Has(direct):
			ps.add(direct, CodeDataUnpaired, "%s is set but %s is missing", trans, direct)
		case d.Has(direct) && !d.Has(trans):
			ps.add(trans, CodeDataUnpaired, "%s is set but %s is missing", direct, trans)
		}
	}
	pair(DataSampleTransmission, DataSampleDirect)
	pair(DataCanTransmission, DataCanDirect)
	for _, f := range []string{DataCanTransmission, DataCanDirect} {
		if d.Has(f) && !d.Has(DataCanScatter) {
			ps.add(DataCanScatter, CodeDataNoCanScatter, "%s is set but no can scatter run is given", f)
		}
	}
	if inst := d.InstrumentName(); inst.Valid() && inst.Facility() != d.Facility() {
		ps.add(DataInstrument, CodeDataFacility, "instrument %s is not hosted at facility %s", inst, d.Facility())
	}
	if inst := d.InstrumentName(); d.inst != "" && inst != d.inst {
		ps.add(DataInstrument, CodeDataFacility, "instrument %s does not match configuration instrument %s", inst, d.inst)
	}
	return d.validate(ps)
}
