package param

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/sansstate/internal/bag"
)

// Constraint is a per-field validator run by Schema.Validate. It only sees
// values that already passed Check.
type Constraint func(v bag.Value) error

// Param describes one typed field of a State.
type Param struct {
	Name string
	Kind Kind

	// Optional allows the field to be absent.
	Optional bool

	// Transient fields are accepted by builders but never encoded into a
	// bag; they exist to drive defaults and derived queries.
	Transient bool

	// Members is the closed set for Enum and EnumList.
	Members []string

	// Fields is the element schema for Composite kinds.
	Fields []Param

	// Default is used when the field is absent.
	Default bag.Value

	Constraint Constraint
}

// Constructors. Modifiers below return copies, so declarations read as
// param.NewFloat("scale").WithDefault(bag.Float(1)).Must(Positive).

func NewBool(name string) Param       { return Param{Name: name, Kind: Bool} }
func NewString(name string) Param     { return Param{Name: name, Kind: String} }
func NewFloat(name string) Param      { return Param{Name: name, Kind: Float} }
func NewInt(name string) Param        { return Param{Name: name, Kind: Int} }
func NewFloatRange(name string) Param { return Param{Name: name, Kind: FloatRange} }
func NewFloatList(name string) Param  { return Param{Name: name, Kind: FloatList} }
func NewIntList(name string) Param    { return Param{Name: name, Kind: IntList} }
func NewStringList(name string) Param { return Param{Name: name, Kind: StringList} }
func NewStringMap(name string) Param  { return Param{Name: name, Kind: StringMap} }

func NewEnum(name string, members ...string) Param {
	return Param{Name: name, Kind: Enum, Members: members}
}

func NewEnumList(name string, members ...string) Param {
	return Param{Name: name, Kind: EnumList, Members: members}
}

func NewComposite(name string, fields ...Param) Param {
	return Param{Name: name, Kind: Composite, Fields: fields}
}

func NewCompositeMap(name string, fields ...Param) Param {
	return Param{Name: name, Kind: CompositeMap, Fields: fields}
}

func NewCompositeList(name string, fields ...Param) Param {
	return Param{Name: name, Kind: CompositeList, Fields: fields}
}

// Opt marks the field optional.
func (p Param) Opt() Param {
	p.Optional = true
	return p
}

// Derived marks the field transient and optional.
func (p Param) Derived() Param {
	p.Transient = true
	p.Optional = true
	return p
}

// WithDefault sets the value used when the field is absent.
func (p Param) WithDefault(v bag.Value) Param {
	p.Default = v
	return p
}

// Must attaches a constraint.
func (p Param) Must(c Constraint) Param {
	p.Constraint = c
	return p
}

// Expected describes the accepted shape for error messages.
func (p Param) Expected() string {
	switch p.Kind {
	case Enum, EnumList:
		return fmt.Sprintf("%s of {%s}", p.Kind, strings.Join(p.Members, ", "))
	default:
		return p.Kind.String()
	}
}

// Check accepts or rejects v for this descriptor. It returns a deep copy of
// the accepted value. An absent value yields the default, or (nil, nil) for
// optional fields without one.
func (p Param) Check(v bag.Value) (bag.Value, error) {
	return p.check(p.Name, v)
}

func (p Param) check(path string, v bag.Value) (bag.Value, error) {
	if v == nil {
		if p.Default != nil {
			return bag.Clone(p.Default), nil
		}
		if p.Optional {
			return nil, nil
		}
		return nil, &TypeError{Field: path, Expected: p.Expected(), Got: bag.KindAbsent, Reason: "field is required"}
	}

	switch p.Kind {
	case Bool:
		if b, ok := v.(bag.Bool); ok {
			return b, nil
		}
	case String:
		return p.checkString(path, v)
	case Int:
		if n, ok := v.(bag.Int); ok {
			return n, nil
		}
	case Float:
		return p.checkFloat(path, v)
	case Enum:
		return p.checkEnum(path, v)
	case FloatRange:
		return p.checkRange(path, v)
	case FloatList:
		return p.checkList(path, v, func(elem string, e bag.Value) (bag.Value, error) {
			return p.checkFloat(elem, e)
		})
	case IntList:
		return p.checkList(path, v, func(elem string, e bag.Value) (bag.Value, error) {
			if n, ok := e.(bag.Int); ok {
				return n, nil
			}
			return nil, p.typeError(elem, e, "")
		})
	case StringList:
		return p.checkList(path, v, p.checkString)
	case EnumList:
		return p.checkList(path, v, func(elem string, e bag.Value) (bag.Value, error) {
			return p.checkEnum(elem, e)
		})
	case StringMap:
		return p.checkMap(path, v, p.checkString)
	case Composite:
		return p.checkComposite(path, v)
	case CompositeMap:
		return p.checkMap(path, v, p.checkComposite)
	case CompositeList:
		// A flattened list of bags comes back keyed "0".."n-1".
		if b, ok := v.(bag.Bag); ok {
			if l, ok := bag.IndexedList(b); ok {
				v = l
			}
		}
		return p.checkList(path, v, p.checkComposite)
	default:
		return nil, &TypeError{Field: path, Expected: p.Expected(), Got: describe(v), Reason: "descriptor has no kind"}
	}
	return nil, p.typeError(path, v, "")
}

func (p Param) typeError(path string, v bag.Value, reason string) *TypeError {
	return &TypeError{Field: path, Expected: p.Expected(), Got: describe(v), Reason: reason}
}

// checkString accepts valid UTF-8 and returns it in NFC, the form canonical
// JSON writes, so a held string survives encoding unchanged.
func (p Param) checkString(path string, v bag.Value) (bag.Value, error) {
	s, ok := v.(bag.String)
	if !ok {
		return nil, p.typeError(path, v, "")
	}
	if !utf8.ValidString(string(s)) {
		return nil, p.typeError(path, v, "invalid UTF-8")
	}
	return bag.String(norm.NFC.String(string(s))), nil
}

// checkFloat accepts Float, and Int widened to Float.
func (p Param) checkFloat(path string, v bag.Value) (bag.Value, error) {
	var f float64
	switch n := v.(type) {
	case bag.Float:
		f = float64(n)
	case bag.Int:
		f = float64(n)
	default:
		return nil, p.typeError(path, v, "")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, p.typeError(path, v, "value must be finite")
	}
	return bag.Float(f), nil
}

func (p Param) checkEnum(path string, v bag.Value) (bag.Value, error) {
	s, ok := v.(bag.String)
	if !ok {
		return nil, p.typeError(path, v, "")
	}
	for _, m := range p.Members {
		if strings.EqualFold(m, string(s)) {
			return bag.String(m), nil
		}
	}
	return nil, p.typeError(path, v, "unknown member")
}

func (p Param) checkRange(path string, v bag.Value) (bag.Value, error) {
	b, ok := v.(bag.Bag)
	if !ok {
		return nil, p.typeError(path, v, "")
	}
	bound := Param{Kind: Float}
	low, err := bound.check(path+"."+RangeLow, b[RangeLow])
	if err != nil {
		return nil, err
	}
	high, err := bound.check(path+"."+RangeHigh, b[RangeHigh])
	if err != nil {
		return nil, err
	}
	if low.(bag.Float) > high.(bag.Float) {
		return nil, p.typeError(path, v, "low must not exceed high")
	}
	return bag.Bag{RangeLow: low, RangeHigh: high}, nil
}

func (p Param) checkList(path string, v bag.Value, elem func(string, bag.Value) (bag.Value, error)) (bag.Value, error) {
	l, ok := v.(bag.List)
	if !ok {
		return nil, p.typeError(path, v, "")
	}
	out := make(bag.List, len(l))
	for i, e := range l {
		cv, err := elem(fmt.Sprintf("%s.%d", path, i), e)
		if err != nil {
			return nil, err
		}
		out[i] = cv
	}
	return out, nil
}

func (p Param) checkMap(path string, v bag.Value, elem func(string, bag.Value) (bag.Value, error)) (bag.Value, error) {
	b, ok := v.(bag.Bag)
	if !ok {
		return nil, p.typeError(path, v, "")
	}
	out := make(bag.Bag, len(b))
	for _, k := range b.SortedKeys() {
		key, err := p.checkKey(path, k, b)
		if err != nil {
			return nil, err
		}
		if _, dup := out[key]; dup {
			return nil, p.typeError(path, v, fmt.Sprintf("keys %q and %q collide after NFC normalization", k, key))
		}
		cv, err := elem(path+"."+key, b[k])
		if err != nil {
			return nil, err
		}
		out[key] = cv
	}
	return out, nil
}

// checkKey accepts a map key that flattens unambiguously and returns it in
// NFC.
func (p Param) checkKey(path, k string, b bag.Bag) (string, error) {
	switch {
	case k == "":
		return "", p.typeError(path, b, "empty key")
	case strings.Contains(k, bag.Separator):
		return "", p.typeError(path, b, fmt.Sprintf("key %q contains %q", k, bag.Separator))
	case !utf8.ValidString(k):
		return "", p.typeError(path, b, fmt.Sprintf("key %q is not valid UTF-8", k))
	}
	return norm.NFC.String(k), nil
}

// checkComposite checks a bag against Fields. Unknown sub-keys are dropped.
func (p Param) checkComposite(path string, v bag.Value) (bag.Value, error) {
	b, ok := v.(bag.Bag)
	if !ok {
		return nil, &TypeError{Field: path, Expected: "composite", Got: describe(v)}
	}
	out := make(bag.Bag, len(p.Fields))
	for _, f := range p.Fields {
		cv, err := f.check(path+"."+f.Name, b[f.Name])
		if err != nil {
			return nil, err
		}
		if cv != nil {
			out[f.Name] = cv
		}
	}
	return out, nil
}
