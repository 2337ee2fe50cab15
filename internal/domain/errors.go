package domain

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a folder, document or view was not found
	NotFoundError struct {
		Resource string
		ID       string
	}

	// ValidationError indicates invalid input. Fields holds per-field
	// messages when the input was a struct.
	ValidationError struct {
		Message string
		Fields  map[string]string
	}
)

// Error implementations
func (e *NotFoundError) Error() string   { return e.Resource + " not found: " + e.ID }
func (e *ValidationError) Error() string { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int   { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// Is allows errors.Is() to match the typed errors against the sentinels
func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError wraps a failed Validate call. Field messages from
// ozzo-validation are kept; any other error becomes the message.
func NewValidationError(message string, err error) *ValidationError {
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Message: err.Error()}
	}
	fields := make(map[string]string, len(fieldErrs))
	for name, fe := range fieldErrs {
		if fe != nil {
			fields[name] = fe.Error()
		}
	}
	return &ValidationError{Message: message, Fields: fields}
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)
