package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")   // Missing or malformed input
	ErrConflict           = errors.New("already exists")      // Unique field already taken
	ErrInvalidCredentials = errors.New("invalid credentials") // Bad login pair or bad token
	ErrNotFound           = errors.New("not found")           // Referenced record is gone
	ErrForbidden          = errors.New("insufficient role")   // Authenticated but not allowed
)

// ValidationError describes which input was rejected; it matches ErrValidation
type ValidationError struct {
	Message string
}

func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// UpstreamError carries a non-2xx answer from a third-party dependency so
// the handler can pass its status and body through unchanged.
type UpstreamError struct {
	Status int    // HTTP status returned by the upstream
	Body   []byte // Raw response body
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream responded with status %d", e.Status)
}
