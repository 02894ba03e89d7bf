package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is one schema violation of a graph document.
type ValidationError struct {
	Key    string // Field path, e.g. nodes.bas_agrisi.options.0
	Rule   string // Failed JSON Schema keyword
	Reason string // Human-readable reason for failure
}

func (e *ValidationError) Error() string {
	if e.Rule == "" {
		return fmt.Sprintf("field %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("field %q: %s (%s)", e.Key, e.Reason, e.Rule)
}

// AggregateError collects every violation found in one document.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, err)
	}
	return b.String()
}

// Unwrap exposes the individual violations to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns the violations carried by err, which may be wrapped.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
