package state

import (
	"fmt"
	"math"

	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/param"
)

// Move fields shared by every instrument.
const (
	MoveDetectorNames         = "detector_names"
	MoveDetectorNamesShort    = "detector_names_short"
	MoveCorrections           = "corrections"
	MoveSampleOffset          = "sample_offset"
	MoveSampleOffsetDirection = "sample_offset_direction"
	MoveMonitorNames          = "monitor_names"
)

// Per-bank correction fields.
const (
	CorrectionX          = "x"
	CorrectionY          = "y"
	CorrectionZ          = "z"
	CorrectionRotation   = "rotation"
	CorrectionSide       = "side"
	CorrectionRadius     = "radius"
	CorrectionXTilt      = "x_tilt"
	CorrectionYTilt      = "y_tilt"
	CorrectionCentrePos1 = "centre_pos1"
	CorrectionCentrePos2 = "centre_pos2"
)

// Instrument specific move fields.
const (
	MoveHABDetectorRadius     = "hab_detector_radius"
	MoveHABDetectorDefaultSDM = "hab_detector_default_sd_m"
	MoveHABDetectorDefaultXM  = "hab_detector_default_x_m"
	MoveLABDetectorDefaultSDM = "lab_detector_default_sd_m"
	MoveHABDetectorX          = "hab_detector_x"
	MoveHABDetectorZ          = "hab_detector_z"
	MoveHABDetectorRotation   = "hab_detector_rotation"
	MoveLABDetectorX          = "lab_detector_x"
	MoveLABDetectorZ          = "lab_detector_z"
	MoveMonitor4Offset        = "monitor_4_offset"
	MoveMonitor5Offset        = "monitor_5_offset"
	MoveCenterPosition        = "center_position"
	MoveBenchRotation         = "bench_rotation"
)

// Move validation codes.
const (
	CodeMoveMissingName = "E220"
	CodeMoveForeignBank = "E221"
	CodeMoveNotFinite   = "E222"
)

// Sample offset directions.
const (
	DirectionX = "X"
	DirectionY = "Y"
	DirectionZ = "Z"
)

func zero(name string) param.Param {
	return param.NewFloat(name).WithDefault(bag.Float(0))
}

var correctionFields = []param.Param{
	zero(CorrectionX),
	zero(CorrectionY),
	zero(CorrectionZ),
	zero(CorrectionRotation),
	zero(CorrectionSide),
	zero(CorrectionRadius),
	zero(CorrectionXTilt),
	zero(CorrectionYTilt),
	zero(CorrectionCentrePos1),
	zero(CorrectionCentrePos2),
}

var moveCommon = param.MustSchema(string(ConcernMove),
	param.NewStringMap(MoveDetectorNames).Must(param.NonEmpty),
	param.NewStringMap(MoveDetectorNamesShort).Must(param.NonEmpty),
	param.NewCompositeMap(MoveCorrections, correctionFields...).WithDefault(bag.Bag{}),
	zero(MoveSampleOffset),
	param.NewEnum(MoveSampleOffsetDirection, DirectionX, DirectionY, DirectionZ).WithDefault(bag.String(DirectionZ)),
	param.NewStringMap(MoveMonitorNames).WithDefault(bag.Bag{}),
)

// moveSchemas holds the per-instrument move schema. It is written only
// during package initialisation.
var moveSchemas = map[instrument.Instrument]*param.Schema{
	instrument.SANS2D: moveCommon.Extend("move/SANS2D",
		param.NewFloat(MoveHABDetectorRadius).WithDefault(bag.Float(306.0/1000)),
		param.NewFloat(MoveHABDetectorDefaultSDM).WithDefault(bag.Float(317.0/1000)),
		param.NewFloat(MoveHABDetectorDefaultXM).WithDefault(bag.Float(1.1)),
		param.NewFloat(MoveLABDetectorDefaultSDM).WithDefault(bag.Float(4.0)),
		zero(MoveHABDetectorX),
		zero(MoveHABDetectorZ),
		zero(MoveHABDetectorRotation),
		zero(MoveLABDetectorX),
		zero(MoveLABDetectorZ),
		zero(MoveMonitor4Offset),
	),
	instrument.LOQ: moveCommon.Extend("move/LOQ",
		param.NewFloat(MoveCenterPosition).WithDefault(bag.Float(317.5/1000)),
	),
	instrument.LARMOR: moveCommon.Extend("move/LARMOR",
		zero(MoveBenchRotation),
	),
	instrument.ZOOM: moveCommon.Extend("move/ZOOM",
		zero(MoveMonitor4Offset),
		zero(MoveMonitor5Offset),
	),
}

// MoveSchema returns the move schema of inst.
func MoveSchema(inst instrument.Instrument) (*param.Schema, error) {
	s, ok := moveSchemas[inst]
	if !ok {
		return nil, &instrument.UnknownError{Kind: "instrument", Value: string(inst), Known: instrument.Names()}
	}
	return s, nil
}

// Correction is the position correction of one detector bank.
type Correction struct {
	X, Y, Z    float64
	Rotation   float64
	Side       float64
	Radius     float64
	XTilt      float64
	YTilt      float64
	CentrePos1 float64
	CentrePos2 float64
}

// Move places the detector banks, monitors and sample.
type Move struct {
	base
}

// DecodeMove rehydrates a Move state for inst.
func DecodeMove(inst instrument.Instrument, b bag.Bag) (*Move, error) {
	schema, err := MoveSchema(inst)
	if err != nil {
		return nil, &DeserializationError{Concern: ConcernMove, Reason: "no move schema", Err: err}
	}
	s, err := decodeBase(ConcernMove, inst, schema, b)
	if err != nil {
		return nil, err
	}
	return &Move{s}, nil
}

// DetectorNames returns the full component name of each bank.
func (m *Move) DetectorNames() map[instrument.Bank]string {
	return bankMap(m.stringMap(MoveDetectorNames))
}

// DetectorNamesShort returns the short component name of each bank.
func (m *Move) DetectorNamesShort() map[instrument.Bank]string {
	return bankMap(m.stringMap(MoveDetectorNamesShort))
}

// MonitorNames maps spectrum number to monitor name.
func (m *Move) MonitorNames() map[string]string {
	return m.stringMap(MoveMonitorNames)
}

func (m *Move) SampleOffset() float64 { return m.float(MoveSampleOffset) }

func (m *Move) SampleOffsetDirection() string { return m.str(MoveSampleOffsetDirection) }

// Correction returns the correction for bank; an uncorrected bank yields
// the zero Correction.
func (m *Move) Correction(bank instrument.Bank) Correction {
	all, _ := m.values[MoveCorrections].(bag.Bag)
	c, _ := all[string(bank)].(bag.Bag)
	get := func(k string) float64 {
		f, _ := c[k].(bag.Float)
		return float64(f)
	}
	return Correction{
		X:          get(CorrectionX),
		Y:          get(CorrectionY),
		Z:          get(CorrectionZ),
		Rotation:   get(CorrectionRotation),
		Side:       get(CorrectionSide),
		Radius:     get(CorrectionRadius),
		XTilt:      get(CorrectionXTilt),
		YTilt:      get(CorrectionYTilt),
		CentrePos1: get(CorrectionCentrePos1),
		CentrePos2: get(CorrectionCentrePos2),
	}
}

// Validate implements State.
func (m *Move) Validate() error {
	var ps problems
	for _, field := range []string{MoveDetectorNames, MoveDetectorNamesShort} {
		names, _ := m.values[field].(bag.Bag)
		for _, b := range m.inst.Banks() {
			if s, _ := names[string(b)].(bag.String); s == "" {
				ps.add(field+"."+string(b), CodeMoveMissingName, "bank %s of %s has no name", b, m.inst)
			}
		}
		_, foreign := bankKeys(names, m.inst)
		for _, k := range foreign {
			ps.add(field+"."+k, CodeMoveForeignBank, "%q is not a detector bank of %s", k, m.inst)
		}
	}
	corrections, _ := m.values[MoveCorrections].(bag.Bag)
	_, foreign := bankKeys(corrections, m.inst)
	for _, k := range foreign {
		ps.add(MoveCorrections+"."+k, CodeMoveForeignBank, "%q is not a detector bank of %s", k, m.inst)
	}
	for _, k := range corrections.SortedKeys() {
		c, _ := corrections[k].(bag.Bag)
		for _, f := range c.SortedKeys() {
			if v, ok := c[f].(bag.Float); ok && (math.IsNaN(float64(v)) || math.IsInf(float64(v), 0)) {
				ps.add(fmt.Sprintf("%s.%s.%s", MoveCorrections, k, f), CodeMoveNotFinite, "correction must be finite")
			}
		}
	}
	return m.validate(ps)
}

func bankMap(m map[string]string) map[instrument.Bank]string {
	out := make(map[instrument.Bank]string, len(m))
	for k, v := range m {
		out[instrument.Bank(k)] = v
	}
	return out
}
