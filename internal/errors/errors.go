// Package errors carries the error helpers shared across the service.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports one or more field-level policy violations, e.g. a
// password failing the strength rules. It surfaces to clients as a short
// message plus the list of sub-errors.
type ValidationError struct {
	Message string
	Errors  []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Errors, ", ")
}

// NewValidation builds a ValidationError from a message and sub-errors.
func NewValidation(message string, subErrors ...string) *ValidationError {
	return &ValidationError{Message: message, Errors: subErrors}
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
