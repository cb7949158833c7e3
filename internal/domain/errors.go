package domain

import (
	"fmt"
	"strings"
)

// DomainError reports an analytical input outside its documented domain.
// Callers must re-prompt; no default is ever substituted.
type DomainError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s=%v is outside its domain: %s", e.Field, e.Value, e.Reason)
}

// ValidationError describes one malformed entry. Index is the position in the
// offending sequence, or -1 when the field is a scalar.
type ValidationError struct {
	Index  int     `json:"index"`
	Field  string  `json:"field"`
	Value  float64 `json:"value"`
	Reason string  `json:"reason"`
}

func (e ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s[%d]: %s", e.Field, e.Index, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidationErrors collects every problem found in a single payload.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// TransportFailure wraps a failed call to the external simulator. It is never
// produced for a successful run, however degenerate its numbers are.
type TransportFailure struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportFailure) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("simulator %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("simulator %s: %v", e.Op, e.Err)
}

func (e *TransportFailure) Unwrap() error {
	return e.Err
}
