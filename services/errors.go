package services

import (
	"errors"
	"sort"
	"strings"
)

// Common errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInactiveUser       = errors.New("user account is disabled")
	ErrValidation         = errors.New("validation error")
)

// ValidationError reports per-field problems. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation error: " + strings.Join(fields, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// requiredFieldsError builds the error returned when a full write omits fields.
func requiredFieldsError(fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	verr := NewValidationError()
	for _, f := range fields {
		verr.Add(f, "This field is required.")
	}
	return verr
}
