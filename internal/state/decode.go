package state

import (
	"fmt"

	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/param"
)

// SchemaFor returns the schema of concern c on inst.
func SchemaFor(c Concern, inst instrument.Instrument) (*param.Schema, error) {
	switch c {
	case ConcernCompatibility:
		return compatibilitySchema, nil
	case ConcernData:
		return dataSchema, nil
	case ConcernMask:
		return maskSchema, nil
	case ConcernMove:
		return MoveSchema(inst)
	case ConcernReduction:
		return reductionSchema, nil
	case ConcernSave:
		return saveSchema, nil
	case ConcernScale:
		return scaleSchema, nil
	case ConcernWavelength:
		return wavelengthSchema, nil
	}
	return nil, fmt.Errorf("unknown concern %q", c)
}

// Decode rehydrates the State of concern c from b. Flat or nested bags are
// accepted; unknown keys are ignored. Decode does not validate.
func Decode(c Concern, inst instrument.Instrument, b bag.Bag) (State, error) {
	switch c {
	case ConcernCompatibility:
		return asState(DecodeCompatibility(inst, b))
	case ConcernData:
		return asState(DecodeData(inst, b))
	case ConcernMask:
		return asState(DecodeMask(inst, b))
	case ConcernMove:
		return asState(DecodeMove(inst, b))
	case ConcernReduction:
		return asState(DecodeReduction(inst, b))
	case ConcernSave:
		return asState(DecodeSave(inst, b))
	case ConcernScale:
		return asState(DecodeScale(inst, b))
	case ConcernWavelength:
		return asState(DecodeWavelength(inst, b))
	}
	return nil, &DeserializationError{Concern: c, Reason: "unknown concern"}
}

// asState keeps a failed decode from yielding a non-nil State holding a nil
// pointer.
func asState[S State](s S, err error) (State, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
