package state

import (
	"strings"

	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/param"
)

// Save fields.
const (
	SaveFileFormat               = "file_format"
	SaveZeroFreeCorrection       = "zero_free_correction"
	SaveOutputName               = "user_specified_output_name"
	SaveOutputNameSuffix         = "user_specified_output_name_suffix"
	SaveUseReductionModeAsSuffix = "use_reduction_mode_as_suffix"
)

// Output formats.
const (
	FormatNexus    = "Nexus"
	FormatCanSAS   = "CanSAS"
	FormatNXcanSAS = "NXcanSAS"
	FormatNistQxy  = "NistQxy"
	FormatRKH      = "RKH"
	FormatCSV      = "CSV"
)

// CodeSavePath flags output names containing path separators.
const CodeSavePath = "E250"

var saveSchema = param.MustSchema(string(ConcernSave),
	param.NewEnumList(SaveFileFormat, FormatNexus, FormatCanSAS, FormatNXcanSAS, FormatNistQxy, FormatRKH, FormatCSV).
		WithDefault(bag.List{}).Must(param.Unique),
	param.NewBool(SaveZeroFreeCorrection).WithDefault(bag.Bool(true)),
	param.NewString(SaveOutputName).Opt(),
	param.NewString(SaveOutputNameSuffix).Opt(),
	param.NewBool(SaveUseReductionModeAsSuffix).WithDefault(bag.Bool(false)),
)

// Save controls how reduced data is written.
type Save struct {
	base
}

// DecodeSave rehydrates a Save state.
func DecodeSave(inst instrument.Instrument, b bag.Bag) (*Save, error) {
	s, err := decodeBase(ConcernSave, inst, saveSchema, b)
	if err != nil {
		return nil, err
	}
	return &Save{s}, nil
}

func (s *Save) FileFormats() []string       { return s.strings(SaveFileFormat) }
func (s *Save) ZeroFreeCorrection() bool    { return s.boolean(SaveZeroFreeCorrection) }
func (s *Save) OutputName() string          { return s.str(SaveOutputName) }
func (s *Save) OutputNameSuffix() string    { return s.str(SaveOutputNameSuffix) }
func (s *Save) ReductionModeAsSuffix() bool { return s.boolean(SaveUseReductionModeAsSuffix) }

// Validate implements State.
func (s *Save) Validate() error {
	var ps problems
	for _, f := range []string{SaveOutputName, SaveOutputNameSuffix} {
		if strings.ContainsAny(s.str(f), `/\`) {
			ps.add(f, CodeSavePath, "%q must be a file name, not a path", s.str(f))
		}
	}
	return s.validate(ps)
}
