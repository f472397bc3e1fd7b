package state

import (
	"strconv"
	"strings"

	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/param"
)

// Compatibility fields.
const (
	CompatibilityMode              = "use_compatibility_mode"
	CompatibilityTimeRebin         = "time_rebin_string"
	CompatibilityEventSliceOptimal = "use_event_slice_optimisation"
)

// Compatibility validation codes.
const (
	CodeCompatibilityRebin    = "E260"
	CodeCompatibilityConflict = "E261"
)

var compatibilitySchema = param.MustSchema(string(ConcernCompatibility),
	param.NewBool(CompatibilityMode).WithDefault(bag.Bool(false)),
	param.NewString(CompatibilityTimeRebin).Opt(),
	param.NewBool(CompatibilityEventSliceOptimal).WithDefault(bag.Bool(false)),
)

// Compatibility selects the legacy event-to-histogram conversion.
type Compatibility struct {
	base
}

// DecodeCompatibility rehydrates a Compatibility state.
func DecodeCompatibility(inst instrument.Instrument, b bag.Bag) (*Compatibility, error) {
	s, err := decodeBase(ConcernCompatibility, inst, compatibilitySchema, b)
	if err != nil {
		return nil, err
	}
	return &Compatibility{s}, nil
}

func (c *Compatibility) Enabled() bool                { return c.boolean(CompatibilityMode) }
func (c *Compatibility) TimeRebin() string            { return c.str(CompatibilityTimeRebin) }
func (c *Compatibility) EventSliceOptimisation() bool { return c.boolean(CompatibilityEventSliceOptimal) }

// ParseRebin parses "start,step,stop[,step,stop...]" rebin parameters.
func ParseRebin(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 3 || len(parts)%2 == 0 {
		return nil, &param.TypeError{Field: CompatibilityTimeRebin, Expected: "start,step,stop[,step,stop...]", Got: strconv.Quote(s), Reason: "need an odd number of at least 3 values"}
	}
	out := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, &param.TypeError{Field: CompatibilityTimeRebin, Expected: "numeric value", Got: strconv.Quote(p), Reason: "not a number"}
		}
		out[i] = f
	}
	return out, nil
}

// Validate implements State.
func (c *Compatibility) Validate() error {
	var ps problems
	if c.Has(CompatibilityTimeRebin) {
		if _, err := ParseRebin(c.TimeRebin()); err != nil {
			ps.add(CompatibilityTimeRebin, CodeCompatibilityRebin, "%v", err)
		}
	}
	if c.Enabled() && c.EventSliceOptimisation() {
		ps.add(CompatibilityEventSliceOptimal, CodeCompatibilityConflict, "event slice optimisation cannot be used with compatibility mode")
	}
	return c.validate(ps)
}
