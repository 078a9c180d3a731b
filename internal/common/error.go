package common

import "fmt"

// FieldError reports which input field failed validation. It matches
// ErrValidation through errors.Is.
type FieldError struct {
	Field  string
	Reason string
}

// NewFieldError builds a validation error for the given field.
func NewFieldError(field, reason string) *FieldError {
	return &FieldError{Field: field, Reason: reason}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrValidation }
