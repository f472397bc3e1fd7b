// Package instrument defines the closed facility and instrument enums used
// as dispatch keys for builders.
//
// Parsing never falls back to a "no instrument" value: an unrecognised
// identifier is an error, because a silently defaulted instrument hides
// configuration typos until a reduction produces wrong output.
package instrument

import (
	"fmt"
	"strings"
)

// EnumVersion is bumped whenever an identifier is added or removed.
const EnumVersion = "1"

// Facility is a neutron source.
type Facility string

const (
	ISIS Facility = "ISIS"
)

func (f Facility) String() string {
	return string(f)
}

// Instrument is a SANS instrument at a facility.
type Instrument string

const (
	SANS2D Instrument = "SANS2D"
	LOQ    Instrument = "LOQ"
	LARMOR Instrument = "LARMOR"
	ZOOM   Instrument = "ZOOM"
)

func (i Instrument) String() string {
	return string(i)
}

// Bank identifies a detector bank.
type Bank string

const (
	// LAB is the low angle (rear, main) bank. Every instrument has one.
	LAB Bank = "LAB"
	// HAB is the high angle (front) bank.
	HAB Bank = "HAB"
)

func (b Bank) String() string {
	return string(b)
}

// AllBanks lists banks in canonical order.
var AllBanks = []Bank{LAB, HAB}

// ParseBank parses a bank identifier.
func ParseBank(s string) (Bank, error) {
	for _, b := range AllBanks {
		if strings.EqualFold(string(b), strings.TrimSpace(s)) {
			return b, nil
		}
	}
	return "", &UnknownError{Kind: "bank", Value: s, Known: BankNames()}
}

type descriptor struct {
	instrument Instrument
	facility   Facility
	banks      []Bank
}

// registry order is the versioned enum order.
var registry = []descriptor{
	{SANS2D, ISIS, []Bank{LAB, HAB}},
	{LOQ, ISIS, []Bank{LAB, HAB}},
	{LARMOR, ISIS, []Bank{LAB}},
	{ZOOM, ISIS, []Bank{LAB}},
}

var facilities = []Facility{ISIS}

// UnknownError reports an identifier outside a closed set.
type UnknownError struct {
	Kind  string
	Value string
	Known []string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("unknown %s %q (known: %s)", e.Kind, e.Value, strings.Join(e.Known, ", "))
}

// ParseFacility parses a facility identifier, case-insensitively.
func ParseFacility(s string) (Facility, error) {
	for _, f := range facilities {
		if strings.EqualFold(string(f), strings.TrimSpace(s)) {
			return f, nil
		}
	}
	return "", &UnknownError{Kind: "facility", Value: s, Known: FacilityNames()}
}

// ParseInstrument parses an instrument identifier, case-insensitively.
func ParseInstrument(s string) (Instrument, error) {
	for _, d := range registry {
		if strings.EqualFold(string(d.instrument), strings.TrimSpace(s)) {
			return d.instrument, nil
		}
	}
	return "", &UnknownError{Kind: "instrument", Value: s, Known: Names()}
}

// All returns every known instrument in enum order.
func All() []Instrument {
	out := make([]Instrument, len(registry))
	for i, d := range registry {
		out[i] = d.instrument
	}
	return out
}

// Facilities returns every known facility.
func Facilities() []Facility {
	out := make([]Facility, len(facilities))
	copy(out, facilities)
	return out
}

// Names returns instrument identifiers in enum order.
func Names() []string {
	out := make([]string, len(registry))
	for i, d := range registry {
		out[i] = string(d.instrument)
	}
	return out
}

// FacilityNames returns facility identifiers.
func FacilityNames() []string {
	out := make([]string, len(facilities))
	for i, f := range facilities {
		out[i] = string(f)
	}
	return out
}

// Of returns the instruments hosted at facility f.
func Of(f Facility) []Instrument {
	var out []Instrument
	for _, d := range registry {
		if d.facility == f {
			out = append(out, d.instrument)
		}
	}
	return out
}

func (i Instrument) lookup() (descriptor, bool) {
	for _, d := range registry {
		if d.instrument == i {
			return d, true
		}
	}
	return descriptor{}, false
}

// Valid reports whether i is a known instrument.
func (i Instrument) Valid() bool {
	_, ok := i.lookup()
	return ok
}

// Facility returns the facility hosting i, or "" for an unknown value.
func (i Instrument) Facility() Facility {
	d, _ := i.lookup()
	return d.facility
}

// Banks returns the detector banks physically present on i.
func (i Instrument) Banks() []Bank {
	d, _ := i.lookup()
	out := make([]Bank, len(d.banks))
	copy(out, d.banks)
	return out
}

// HasBank reports whether i has bank b.
func (i Instrument) HasBank(b Bank) bool {
	d, _ := i.lookup()
	for _, have := range d.banks {
		if have == b {
			return true
		}
	}
	return false
}

// BankNames returns bank identifiers in canonical order.
func BankNames() []string {
	out := make([]string, len(AllBanks))
	for i, b := range AllBanks {
		out[i] = string(b)
	}
	return out
}
