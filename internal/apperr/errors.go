// Package apperr holds the error taxonomy shared by services, storages and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	// ErrDuplicate is returned by storages when a unique column already holds the value.
	ErrDuplicate = errors.New("duplicate record")
	// ErrLookupExhausted means every generated secret collided with an existing lookup key.
	ErrLookupExhausted = errors.New("could not generate a unique password lookup")
)

// ValidationError carries per-field messages keyed by the JSON field name.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Field builds a ValidationError with a single message.
func Field(field, msg string) *ValidationError {
	return NewValidationError().Add(field, msg)
}

func (e *ValidationError) Add(field, msg string) *ValidationError {
	e.Fields[field] = append(e.Fields[field], msg)
	return e
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// Error returns the first message (fields sorted by name), plus a count of the rest.
func (e *ValidationError) Error() string {
	if e.Empty() {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	total := 0
	for name, msgs := range e.Fields {
		names = append(names, name)
		total += len(msgs)
	}
	sort.Strings(names)

	first := e.Fields[names[0]][0]
	if total == 1 {
		return first
	}
	if total-1 == 1 {
		return fmt.Sprintf("%s (and 1 more error)", first)
	}
	return fmt.Sprintf("%s (and %d more errors)", first, total-1)
}

// AsValidation unwraps err into a *ValidationError when it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
