package loader

import (
	"fmt"
	"strings"
)

// Load error codes.
const (
	CodeRead     = "E001"
	CodeFormat   = "E002"
	CodeSyntax   = "E003"
	CodeValue    = "E004"
	CodeShape    = "E005"
	CodeRejected = "E006"
)

// Pos is a position in a source file. The zero Pos is unknown.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) IsValid() bool { return p.Line > 0 }

// LoadError reports a configuration file that could not be turned into a
// pipeline request.
type LoadError struct {
	File    string
	Pos     Pos
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.File, e.Pos.Line, e.Pos.Col, e.Code, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// positions maps dotted document paths to where they were written.
type positions map[string]Pos

// lookup returns the position of path or of its nearest recorded parent.
func (ps positions) lookup(path string) Pos {
	for path != "" {
		if p, ok := ps[path]; ok {
			return p
		}
		i := strings.LastIndex(path, ".")
		if i < 0 {
			break
		}
		path = path[:i]
	}
	return Pos{}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
