package pipeline

import (
	"fmt"
	"strings"

	"github.com/roach88/sansstate/internal/param"
	"github.com/roach88/sansstate/internal/state"
)

// Cross-concern validation codes.
const (
	CodeMissingConcern = "E290"
	CodeDetectorNames  = "E291"
)

// ValidationError aggregates every problem of a configuration: missing
// concerns, per-state failures and cross-concern inconsistencies.
type ValidationError struct {
	Missing []state.Concern
	States  []*state.ValidationError
	Cross   []param.Problem
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		names := make([]string, len(e.Missing))
		for i, c := range e.Missing {
			names[i] = string(c)
		}
		parts = append(parts, "missing concerns: "+strings.Join(names, ", "))
	}
	for _, se := range e.States {
		parts = append(parts, se.Error())
	}
	for _, p := range e.Cross {
		parts = append(parts, p.String())
	}
	return fmt.Sprintf("pipeline configuration invalid: %s", strings.Join(parts, "; "))
}

// Problems flattens every failure into one list. Fields are prefixed with
// their concern ("reduction.detector_names.HAB").
func (e *ValidationError) Problems() []param.Problem {
	var out []param.Problem
	for _, c := range e.Missing {
		out = append(out, param.Problem{Field: string(c), Message: "concern is not configured", Code: CodeMissingConcern})
	}
	for _, se := range e.States {
		for _, p := range se.Problems {
			p.Field = string(se.Concern) + "." + p.Field
			out = append(out, p)
		}
	}
	return append(out, e.Cross...)
}

func (e *ValidationError) empty() bool {
	return len(e.Missing) == 0 && len(e.States) == 0 && len(e.Cross) == 0
}

// SectionError reports a value rejected while applying the user section of
// one concern.
type SectionError struct {
	Concern state.Concern
	Err     error
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Concern, e.Err)
}

func (e *SectionError) Unwrap() error {
	return e.Err
}
