package schema

import (
	"errors"
	"fmt"
)

// ValidationError represents a single structural validation failure.
type ValidationError struct {
	Path   []string // Element names from the root down to the offending node
	Key    string   // Attribute key, empty for placement failures
	Reason string   // Human-readable reason for failure
}

func (e *ValidationError) Error() string {
	where := "/"
	if len(e.Path) > 0 {
		where = fmt.Sprint(e.Path)
	}
	if e.Key == "" {
		return fmt.Sprintf("%s: %s", where, e.Reason)
	}
	return fmt.Sprintf("%s: attribute %q: %s", where, e.Key, e.Reason)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
