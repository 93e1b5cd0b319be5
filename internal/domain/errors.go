package domain

import (
	"errors"
	"fmt"
)

var (
	// Cheque errors
	ErrValidation     = errors.New("validation failed")
	ErrInvalidKind    = errors.New("invalid cheque kind")
	ErrInvalidID      = errors.New("invalid id")
	ErrChequeNotFound = errors.New("cheque not found")
	ErrInvalidState   = errors.New("cheque is not pending")

	// Store errors
	ErrCollaboratorUnavailable = errors.New("durable store unavailable")
)

// ValidationError reports the draft field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
