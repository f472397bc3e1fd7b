package state

import (
	"fmt"
	"slices"
	"strings"
)

// Concern names one facet of reduction configuration.
type Concern string

const (
	ConcernCompatibility Concern = "compatibility"
	ConcernData          Concern = "data"
	ConcernMask          Concern = "mask"
	ConcernMove          Concern = "move"
	ConcernReduction     Concern = "reduction"
	ConcernSave          Concern = "save"
	ConcernScale         Concern = "scale"
	ConcernWavelength    Concern = "wavelength"
)

func (c Concern) String() string {
	return string(c)
}

// concerns is sorted by name; serialization order depends on it.
var concerns = []Concern{
	ConcernCompatibility,
	ConcernData,
	ConcernMask,
	ConcernMove,
	ConcernReduction,
	ConcernSave,
	ConcernScale,
	ConcernWavelength,
}

// AllConcerns returns every concern sorted by name.
func AllConcerns() []Concern {
	return slices.Clone(concerns)
}

// Mandatory returns the concerns every pipeline configuration must carry and
// every instrument must have a builder for.
func Mandatory() []Concern {
	return AllConcerns()
}

// ParseConcern parses a concern name, case-insensitively.
func ParseConcern(s string) (Concern, error) {
	for _, c := range concerns {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown concern %q", s)
}
