package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a lookup or search matches nothing
	ErrNotFound = errors.New("not found")

	// ErrDuplicateSlug is returned when a title resolves to a slug another post already owns
	ErrDuplicateSlug = errors.New("slug already in use")
)

// StoreError wraps a failure of the underlying post store
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err with the failing operation, passing nil through
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// ValidationCode enumerates the ways a submitted field can be rejected
type ValidationCode string

const (
	CodeRequired       ValidationCode = "required"
	CodeInvalidPattern ValidationCode = "invalid_pattern"
	CodeDuplicate      ValidationCode = "duplicate"
	CodeUnsupported    ValidationCode = "unsupported"
)

// FieldError describes a single rejected field
type FieldError struct {
	Field string
	Code  ValidationCode
}

// Message returns a human-readable description for form views
func (f FieldError) Message() string {
	switch f.Code {
	case CodeRequired:
		return f.Field + " is required"
	case CodeInvalidPattern:
		return f.Field + " is not a valid pattern"
	case CodeDuplicate:
		return "a post with this " + f.Field + " already exists"
	case CodeUnsupported:
		return f.Field + " is not supported"
	default:
		return f.Field + " is invalid"
	}
}

// ValidationError lists every rejected field of a submission
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether field was rejected with code
func (e *ValidationError) Has(field string, code ValidationCode) bool {
	for _, f := range e.Fields {
		if f.Field == field && f.Code == code {
			return true
		}
	}
	return false
}

// Messages returns the rejection messages keyed by field
func (e *ValidationError) Messages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if _, ok := out[f.Field]; !ok {
			out[f.Field] = f.Message()
		}
	}
	return out
}
