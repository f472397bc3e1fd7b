package state

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/sansstate/internal/param"
)

// CodeRequired flags a required field left unset in a builder.
const CodeRequired = "E201"

// ValidationError reports every inconsistency found in one State.
type ValidationError struct {
	Concern  Concern         `json:"concern"`
	Problems []param.Problem `json:"problems"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s state invalid (%d problem(s)): %s", e.Concern, len(e.Problems), strings.Join(parts, "; "))
}

// Fields maps each failing field to its message. Several problems on one
// field are joined with "; ".
func (e *ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(e.Problems))
	for _, p := range e.Problems {
		if prev, ok := out[p.Field]; ok {
			out[p.Field] = prev + "; " + p.Message
			continue
		}
		out[p.Field] = p.Message
	}
	return out
}

// Has reports whether a problem with code was recorded.
func (e *ValidationError) Has(code string) bool {
	for _, p := range e.Problems {
		if p.Code == code {
			return true
		}
	}
	return false
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// DeserializationError aborts conversion of a bag into a State.
type DeserializationError struct {
	Concern Concern
	Key     string
	Reason  string
	Err     error
}

func (e *DeserializationError) Error() string {
	msg := fmt.Sprintf("decode %s: key %q: %s", e.Concern, e.Key, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// IsDeserializationError reports whether err is or wraps a *DeserializationError.
func IsDeserializationError(err error) bool {
	var de *DeserializationError
	return errors.As(err, &de)
}

// problems accumulates validation failures.
type problems []param.Problem

func (ps *problems) add(field, code, format string, args ...any) {
	*ps = append(*ps, param.Problem{Field: field, Message: fmt.Sprintf(format, args...), Code: code})
}
