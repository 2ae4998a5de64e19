package errors

import (
	"net/http"
	"sort"
	"strings"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// Helper for common errors
var (
	ErrNotFound = NewHTTPError(http.StatusNotFound, "Not found.")

	ErrBadRequest      = func(msg string) *HTTPError { return NewHTTPError(http.StatusBadRequest, msg) }
	ErrUnauthorized    = func(msg string) *HTTPError { return NewHTTPError(http.StatusUnauthorized, msg) }
	ErrConflict        = func(msg string) *HTTPError { return NewHTTPError(http.StatusConflict, msg) }
	ErrUnavailable     = func(msg string) *HTTPError { return NewHTTPError(http.StatusServiceUnavailable, msg) }
	ErrTooManyRequests = NewHTTPError(http.StatusTooManyRequests, "Request was throttled.")
	ErrRequestTooLarge = NewHTTPError(http.StatusRequestEntityTooLarge, "Request body too large.")
)

// ValidationError collects field level messages keyed by the JSON field name.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Add appends a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty reports whether no field failed.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// OrNil returns nil when nothing was recorded so callers can return it directly.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
