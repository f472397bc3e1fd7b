package loader

import (
	"fmt"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/sansstate/internal/bag"
)

// parseCUE evaluates a single CUE file.
func parseCUE(name string, data []byte) (bag.Bag, positions, error) {
	v := cuecontext.New().CompileBytes(data, cue.Filename(name))
	return fromCUE(name, v)
}

// parseCUEDir evaluates the CUE package in dir.
func parseCUEDir(dir string) (bag.Bag, positions, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, nil, &LoadError{File: dir, Code: CodeRead, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, nil, cueError(dir, CodeRead, inst.Err)
	}
	return fromCUE(dir, cuecontext.New().BuildInstance(inst))
}

func fromCUE(name string, v cue.Value) (bag.Bag, positions, error) {
	if err := v.Err(); err != nil {
		return nil, nil, cueError(name, CodeSyntax, err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, nil, cueError(name, CodeSyntax, err)
	}

	ps := make(positions)
	out, err := cueValue(name, "", v, ps)
	if err != nil {
		return nil, nil, err
	}
	b, ok := out.(bag.Bag)
	if !ok {
		return nil, nil, &LoadError{
			File:    name,
			Pos:     cuePos(v.Pos()),
			Code:    CodeShape,
			Message: fmt.Sprintf("document must be a struct, got %s", v.Kind()),
		}
	}
	return b, ps, nil
}

// cueValue converts a concrete CUE value. Definitions, hidden fields and
// optional fields are not regular fields and are skipped.
func cueValue(name, path string, v cue.Value, ps positions) (bag.Value, error) {
	if path != "" {
		ps[path] = cuePos(v.Pos())
	}

	switch v.Kind() {
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, cueError(name, CodeSyntax, err)
		}
		out := make(bag.Bag)
		for iter.Next() {
			label := iter.Label()
			child, err := cueValue(name, join(path, label), iter.Value(), ps)
			if err != nil {
				return nil, err
			}
			out[label] = child
		}
		return out, nil

	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, cueError(name, CodeSyntax, err)
		}
		out := bag.List{}
		for i := 0; iter.Next(); i++ {
			child, err := cueValue(name, join(path, strconv.Itoa(i)), iter.Value(), ps)
			if err != nil {
				return nil, err
			}
			out = append(out, child)
		}
		return out, nil

	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, cueValueError(name, path, v, err)
		}
		return bag.Int(n), nil

	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return nil, cueValueError(name, path, v, err)
		}
		return bag.Float(f), nil

	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, cueValueError(name, path, v, err)
		}
		return bag.String(s), nil

	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, cueValueError(name, path, v, err)
		}
		return bag.Bool(b), nil

	default:
		return nil, &LoadError{
			File:    name,
			Pos:     cuePos(v.Pos()),
			Code:    CodeValue,
			Message: fmt.Sprintf("%s: %s has no property bag equivalent", path, v.Kind()),
		}
	}
}

func cueValueError(name, path string, v cue.Value, err error) error {
	return &LoadError{File: name, Pos: cuePos(v.Pos()), Code: CodeValue, Message: fmt.Sprintf("%s: %v", path, err), Err: err}
}

func cuePos(p token.Pos) Pos {
	if !p.IsValid() {
		return Pos{}
	}
	return Pos{Line: p.Line(), Col: p.Column()}
}

// cueError reports the first CUE error with its position.
func cueError(name, code string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{File: name, Code: code, Message: err.Error(), Err: err}
	}
	first := errs[0]
	le := &LoadError{File: name, Code: code, Message: first.Error(), Err: err}
	if ps := cueerrors.Positions(first); len(ps) > 0 && ps[0].IsValid() {
		le.Pos = cuePos(ps[0])
		if f := ps[0].Filename(); f != "" {
			le.File = f
		}
	}
	if len(errs) > 1 {
		le.Message += fmt.Sprintf(" (and %d more)", len(errs)-1)
	}
	return le
}
