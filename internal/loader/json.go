package loader

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/roach88/sansstate/internal/bag"
)

// parseJSON decodes the canonical bag JSON. encoding/json keeps no
// positions for values, so only syntax errors carry one.
func parseJSON(name string, data []byte) (bag.Bag, positions, error) {
	b, err := bag.UnmarshalBag(data)
	if err != nil {
		le := &LoadError{File: name, Code: CodeSyntax, Message: err.Error(), Err: err}
		var se *json.SyntaxError
		if errors.As(err, &se) {
			le.Pos = offsetPos(data, se.Offset)
		}
		return nil, nil, le
	}
	return b, positions{}, nil
}

// offsetPos converts the offset of a syntax error, which counts the
// offending byte, into a line and column.
func offsetPos(data []byte, off int64) Pos {
	if off < 1 {
		return Pos{}
	}
	if off > int64(len(data)) {
		off = int64(len(data))
	}
	prefix := data[:off-1]
	line := bytes.Count(prefix, []byte{'\n'}) + 1
	col := len(prefix) - bytes.LastIndexByte(prefix, '\n')
	return Pos{Line: line, Col: col}
}
