package models

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedName is returned when a name does not split into two or three tokens.
	ErrMalformedName = errors.New("malformed name")

	// ErrInvalidConfig is returned when configuration is rejected before processing.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrInvariantViolation marks an internal consistency failure. It is not recoverable.
	ErrInvariantViolation = errors.New("invariant violation")
)

// MalformedNameError reports a raw name with an unsupported token count.
type MalformedNameError struct {
	Raw    string
	Tokens int
}

func (e *MalformedNameError) Error() string {
	return fmt.Sprintf("malformed name %q: expected 2 or 3 tokens, got %d", e.Raw, e.Tokens)
}

func (e *MalformedNameError) Unwrap() error { return ErrMalformedName }

// InvalidConfigError reports a rejected configuration value.
type InvalidConfigError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// InvariantViolationError reports a broken pipeline invariant.
type InvariantViolationError struct {
	Op     string
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Op, e.Detail)
}

func (e *InvariantViolationError) Unwrap() error { return ErrInvariantViolation }

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (ve ValidationError) Error() string {
	if ve.Value != "" {
		return fmt.Sprintf("validation error in field '%s': %s (value: %s)", ve.Field, ve.Message, ve.Value)
	}
	return fmt.Sprintf("validation error in field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}
	return fmt.Sprintf("%d validation errors: %s (and %d more)", len(ve), ve[0].Error(), len(ve)-1)
}
