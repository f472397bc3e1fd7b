package param

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/roach88/sansstate/internal/bag"
)

// TypeError reports a value of the wrong kind or shape for a descriptor.
// It is returned at the assignment site, before any build or validate.
type TypeError struct {
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Got      string `json:"got"`
	Reason   string `json:"reason,omitempty"`
}

func (e *TypeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("field %q: expected %s, got %s: %s", e.Field, e.Expected, e.Got, e.Reason)
	}
	return fmt.Sprintf("field %q: expected %s, got %s", e.Field, e.Expected, e.Got)
}

// IsTypeError reports whether err is or wraps a *TypeError.
func IsTypeError(err error) bool {
	var te *TypeError
	return errors.As(err, &te)
}

// DecodeError reports a missing or malformed key while decoding a bag.
type DecodeError struct {
	Key    string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("key %q: %s: %v", e.Key, e.Reason, e.Err)
	}
	return fmt.Sprintf("key %q: %s", e.Key, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Problem is one failed check found during validation.
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (p Problem) String() string {
	return fmt.Sprintf("[%s] %s: %s", p.Code, p.Field, p.Message)
}

// CodeConstraint is the code attached to failures of a Param constraint.
const CodeConstraint = "E200"

// describe renders a received value for error messages.
func describe(v bag.Value) string {
	if v == nil {
		return bag.KindAbsent
	}
	data, err := bag.MarshalCanonical(v)
	if err != nil {
		return bag.KindOf(v)
	}
	return fmt.Sprintf("%s %s", bag.KindOf(v), truncate(string(data), 60))
}

// truncate shortens s to at most limit bytes, cutting on a rune boundary.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit - len("...")
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
