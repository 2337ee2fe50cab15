package domain

import (
	"errors"
	"fmt"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func TestErrorsMatchSentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		status int
	}{
		{"not found", &NotFoundError{Resource: "folder", ID: "x"}, ErrNotFound, 404},
		{"validation", &ValidationError{Message: "bad"}, ErrValidation, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("handler: %w", tt.err)
			if !errors.Is(wrapped, tt.target) {
				t.Errorf("errors.Is(%v, %v) = false", wrapped, tt.target)
			}
			var he HTTPError
			if !errors.As(wrapped, &he) || he.StatusCode() != tt.status {
				t.Errorf("StatusCode = %v, want %d", he, tt.status)
			}
		})
	}
}

func TestNewValidationError(t *testing.T) {
	fieldErrs := validation.Errors{
		"email":    errors.New("must be a valid email address"),
		"password": errors.New("cannot be blank"),
		"name":     nil,
	}
	ve := NewValidationError("invalid login", fieldErrs)
	if ve.Message != "invalid login" || len(ve.Fields) != 2 || ve.Fields["password"] != "cannot be blank" {
		t.Errorf("got %+v", ve)
	}

	plain := NewValidationError("invalid login", errors.New("boom"))
	if plain.Message != "boom" || plain.Fields != nil {
		t.Errorf("plain = %+v", plain)
	}
}
