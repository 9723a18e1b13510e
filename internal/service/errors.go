package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when an operation targets a record that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is returned by Login for any authentication failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries per-field messages for rejected input.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Add records a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// OrNil returns nil when no field failed so callers can return it directly.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func fieldError(field, message string) error {
	ve := &ValidationError{}
	ve.Add(field, message)
	return ve
}
