package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInactiveAccount    = errors.New("inactive user account")
	ErrUserNotFound       = errors.New("user not found")

	ErrNoteNotFound    = errors.New("note not found")
	ErrVersionConflict = errors.New("note was modified by another operation")
	// ErrWriteContention is returned when an unconditional update keeps losing
	// the race against other writers.
	ErrWriteContention = errors.New("note is being modified concurrently")

	ErrInvalidID = errors.New("invalid ID format")
)

// ValidationError describes malformed input, keyed by field name.
type ValidationError struct {
	Fields map[string]string
	// Err optionally classifies the failure, e.g. ErrInvalidID.
	Err error
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
