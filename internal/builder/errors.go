package builder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/state"
)

// UnsupportedConfigurationError reports a (facility, instrument, concern)
// triple with no registered constructor.
type UnsupportedConfigurationError struct {
	Facility   instrument.Facility
	Instrument instrument.Instrument
	Concern    state.Concern
}

func (e *UnsupportedConfigurationError) Error() string {
	return fmt.Sprintf("no %s builder registered for %s/%s", e.Concern, e.Facility, e.Instrument)
}

// IsUnsupported reports whether err is or wraps an
// *UnsupportedConfigurationError.
func IsUnsupported(err error) bool {
	var ue *UnsupportedConfigurationError
	return errors.As(err, &ue)
}

// RegistryError lists the gaps found by Registry.SelfCheck.
type RegistryError struct {
	// Missing are mandatory triples without a constructor.
	Missing []Key
	// Invalid are registered triples naming an unknown instrument, an
	// instrument at the wrong facility, or an unknown concern.
	Invalid []Key
}

func (e *RegistryError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+joinKeys(e.Missing))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+joinKeys(e.Invalid))
	}
	return "builder registry incomplete: " + strings.Join(parts, "; ")
}

func joinKeys(keys []Key) string {
	s := make([]string, len(keys))
	for i, k := range keys {
		s[i] = k.String()
	}
	return strings.Join(s, ", ")
}
