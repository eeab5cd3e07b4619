// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrBadRequest        = errors.New("bad request")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrAlreadyDeleted    = errors.New("already deleted")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// ValidationError reports malformed input scoped to a single field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation builds a field-scoped validation error.
func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError rejects an operation with a human-readable reason, typically
// a delete blocked by active references or a restore blocked by domain state.
type ConflictError struct {
	Reason string `json:"reason"`
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// Conflict builds a ConflictError from a format string.
func Conflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

// NotFound wraps ErrNotFound with a descriptive message.
func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// HTTPStatus maps a taxonomy error to its HTTP status code. Unknown errors
// map to 500 so unexpected faults stay distinguishable from rejections.
func HTTPStatus(err error) int {
	var ve *ValidationError
	var ce *ConflictError
	switch {
	case errors.As(err, &ve), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &ce), errors.Is(err, ErrAlreadyDeleted), errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Field returns the failing field name when err is a ValidationError.
func Field(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}
