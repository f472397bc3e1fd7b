package param

import (
	"fmt"

	"github.com/roach88/sansstate/internal/bag"
)

// Schema is the fixed, ordered descriptor list of one State type.
type Schema struct {
	name   string
	params []Param
	index  map[string]int
}

// MustSchema builds a schema. Duplicate or empty names are programming
// errors in a type definition and panic.
func MustSchema(name string, params ...Param) *Schema {
	s := &Schema{name: name, params: params, index: make(map[string]int, len(params))}
	for i, p := range params {
		if p.Name == "" {
			panic(fmt.Sprintf("schema %s: param %d has no name", name, i))
		}
		if p.Kind == 0 {
			panic(fmt.Sprintf("schema %s: param %q has no kind", name, p.Name))
		}
		if _, dup := s.index[p.Name]; dup {
			panic(fmt.Sprintf("schema %s: duplicate param %q", name, p.Name))
		}
		s.index[p.Name] = i
	}
	return s
}

// Extend returns a new schema with the receiver's params followed by extra.
func (s *Schema) Extend(name string, extra ...Param) *Schema {
	params := make([]Param, 0, len(s.params)+len(extra))
	params = append(params, s.params...)
	params = append(params, extra...)
	return MustSchema(name, params...)
}

// Name returns the schema name.
func (s *Schema) Name() string {
	return s.name
}

// Params returns the descriptors in declaration order.
func (s *Schema) Params() []Param {
	out := make([]Param, len(s.params))
	copy(out, s.params)
	return out
}

// Lookup returns the descriptor for name.
func (s *Schema) Lookup(name string) (Param, bool) {
	i, ok := s.index[name]
	if !ok {
		return Param{}, false
	}
	return s.params[i], true
}

// Check runs the named descriptor's Check. Unknown names are a TypeError so
// that a typo in a dynamic setter fails at the call site.
func (s *Schema) Check(name string, v bag.Value) (bag.Value, error) {
	p, ok := s.Lookup(name)
	if !ok {
		return nil, &TypeError{Field: name, Expected: "a field of " + s.name, Got: describe(v), Reason: "unknown field"}
	}
	return p.Check(v)
}

// Defaults returns a bag holding every declared default.
func (s *Schema) Defaults() bag.Bag {
	out := make(bag.Bag)
	for _, p := range s.params {
		if p.Default != nil {
			out[p.Name] = bag.Clone(p.Default)
		}
	}
	return out
}

// Decode checks every descriptor against b and returns a fresh bag holding
// exactly the accepted values. Unknown keys are ignored. A missing required
// key or a malformed value aborts the whole decode.
func (s *Schema) Decode(b bag.Bag) (bag.Bag, error) {
	out := make(bag.Bag, len(s.params))
	for _, p := range s.params {
		raw, present := b[p.Name]
		if !present && p.Transient {
			continue
		}
		v, err := p.Check(raw)
		if err != nil {
			reason := "malformed value"
			if !present {
				reason = "missing required key"
			}
			return nil, &DecodeError{Key: p.Name, Reason: reason, Err: err}
		}
		if v != nil {
			out[p.Name] = v
		}
	}
	return out, nil
}

// Encode emits the persisted fields of values. Transient fields and absent
// optional fields are skipped.
func (s *Schema) Encode(values bag.Bag) bag.Bag {
	out := make(bag.Bag, len(s.params))
	for _, p := range s.params {
		if p.Transient {
			continue
		}
		if v, ok := values[p.Name]; ok && v != nil {
			out[p.Name] = bag.Clone(v)
		}
	}
	return out
}

// Validate runs every constraint, including those on composite sub-fields,
// and returns all failures in declaration order.
func (s *Schema) Validate(values bag.Bag) []Problem {
	var problems []Problem
	for _, p := range s.params {
		problems = append(problems, validateParam(p, p.Name, values[p.Name])...)
	}
	return problems
}

func validateParam(p Param, path string, v bag.Value) []Problem {
	if v == nil {
		return nil
	}
	var problems []Problem
	if p.Constraint != nil {
		if err := p.Constraint(v); err != nil {
			problems = append(problems, Problem{Field: path, Message: err.Error(), Code: CodeConstraint})
		}
	}
	switch p.Kind {
	case Composite:
		problems = append(problems, validateFields(p.Fields, path, v)...)
	case CompositeMap:
		if m, ok := v.(bag.Bag); ok {
			for _, k := range m.SortedKeys() {
				problems = append(problems, validateFields(p.Fields, path+"."+k, m[k])...)
			}
		}
	case CompositeList:
		if l, ok := v.(bag.List); ok {
			for i, elem := range l {
				problems = append(problems, validateFields(p.Fields, fmt.Sprintf("%s.%d", path, i), elem)...)
			}
		}
	}
	return problems
}

func validateFields(fields []Param, path string, v bag.Value) []Problem {
	b, ok := v.(bag.Bag)
	if !ok {
		return nil
	}
	var problems []Problem
	for _, f := range fields {
		problems = append(problems, validateParam(f, path+"."+f.Name, b[f.Name])...)
	}
	return problems
}
