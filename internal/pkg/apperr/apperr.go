// Package apperr defines the error taxonomy shared by the service layer:
// not-found, validation, and normalized persistence failures. Services raise
// these; controllers translate them to HTTP responses.
package apperr

import (
	"github.com/cockroachdb/errors"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrInternal   = errors.New("internal error")
)

// NotFound creates an error for an absent tenant/driver/vehicle/target.
func NotFound(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrNotFound)
}

// Validation creates an error for an illegal state transition or rejected
// input, detected before any persistence round-trip where possible.
func Validation(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrValidation)
}

// Internal wraps a persistence-layer failure into a normalized domain error.
// The original error stays in the chain for logs; callers only see the mark.
func Internal(err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrInternal)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}
