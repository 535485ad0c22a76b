package service

import (
	"eduplatform/internal/data"
	"errors"
	"net/http"
	"strings"
)

// ErrNotFound is returned when a record does not exist or is not public.
var ErrNotFound = data.ErrNotFound

// FieldError describes one rejected field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError is returned when input is rejected before any I/O.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Reason
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func invalid(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// AggregateError is returned when any branch of a concurrent fan-out fails.
// Its message is deliberately generic; the cause is kept for logging.
type AggregateError struct {
	Message string
	Err     error
}

func (e *AggregateError) Error() string { return e.Message }

func (e *AggregateError) Unwrap() error { return e.Err }

// StatusCode maps an error returned by this package to an HTTP status.
// Missing sessions never reach the services; middleware.Authorizer answers 401.
func StatusCode(err error) int {
	var vErr *ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
