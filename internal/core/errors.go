package core

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Map them to transport codes at the edge
// (for example 400 for ErrInvalidInput, 500 for ErrProcessing).
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrProcessing   = errors.New("processing failed")
)

// Error attaches an operation name and a kind to an underlying cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Invalid wraps err as an invalid-input error.
func Invalid(op string, err error) error {
	return &Error{Op: op, Kind: ErrInvalidInput, Err: err}
}

// Failed wraps err as a processing error.
func Failed(op string, err error) error {
	return &Error{Op: op, Kind: ErrProcessing, Err: err}
}

// IsInvalidInput reports whether err is a client-side error.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
