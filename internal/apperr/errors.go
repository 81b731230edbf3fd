// Package apperr defines the error taxonomy shared by the ledgers, the
// message router and the HTTP handlers. Sentinel values let handlers
// distinguish failure classes without inspecting error strings: ErrForbidden
// means the caller is authenticated but lacks rights over the target,
// ErrNotFound means a referenced id does not exist, and ErrConflict means the
// target's current state forbids an otherwise well-formed operation (for
// example bidding on a request that is no longer open).
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrForbidden maps to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrNotFound maps to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrConflict maps to HTTP 409.
var ErrConflict = errors.New("conflict")

// ValidationError reports every violated field of a request, not just the
// first one found. Fields maps a field name to a human-readable reason.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

// Validation builds a ValidationError from collected field violations.
// Callers should pass a non-empty map.
func Validation(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Forbiddenf wraps ErrForbidden with context.
func Forbiddenf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrForbidden)...)
}

// NotFoundf wraps ErrNotFound with context.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Conflictf wraps ErrConflict with context.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

// HTTPStatus translates an error into the status code the gateway reports.
// Unknown errors fall through to 500.
func HTTPStatus(err error) int {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
