package utils

import "fmt"

// StackError represents a structured image stack error.
type StackError struct {
	Context string
	Cause   error
}

// Error implements the error interface.
func (e *StackError) Error() string {
	return fmt.Sprintf("%s: %v", e.Context, e.Cause)
}

// WrapError creates a contextual error.
func WrapError(context string, cause error) error {
	if cause == nil {
		return nil
	}
	return &StackError{
		Context: context,
		Cause:   cause,
	}
}

// Unwrap provides compatibility with errors.Unwrap().
func (e *StackError) Unwrap() error {
	return e.Cause
}
