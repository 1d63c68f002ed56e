// Package apperr defines the error classes the API distinguishes when it
// turns a failure into a client response.
package apperr

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when an id or path does not resolve.
	ErrNotFound = errors.New("resource not found")
	// ErrPayloadTooLarge is returned when an upload exceeds the size ceiling.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrImageDecode is returned for corrupt or unsupported image data.
	ErrImageDecode = errors.New("unsupported or corrupt image")
)

// ValidationError carries field-level messages for rejected input.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Add records a message for field.
func (v *ValidationError) Add(field, msg string) {
	v.Fields[field] = append(v.Fields[field], msg)
}

// Empty reports whether no field failed.
func (v *ValidationError) Empty() bool {
	return len(v.Fields) == 0
}

// OrNil returns v when at least one field failed, nil otherwise.
func (v *ValidationError) OrNil() error {
	if v.Empty() {
		return nil
	}

	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, strings.Join(v.Fields[k], " "))
	}

	return strings.Join(msgs, " ")
}

// Invalid is a shortcut for a single-field ValidationError.
func Invalid(field, msg string) error {
	v := NewValidationError()
	v.Add(field, msg)

	return v
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError

	return errors.As(err, &v)
}
