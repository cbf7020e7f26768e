// Package apperrors defines the error kinds handlers map to HTTP responses.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports the first request field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Validation(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

func NotFound(entity string) *NotFoundError {
	return &NotFoundError{Entity: entity}
}

// AccessDeniedError reports a role or ownership mismatch.
type AccessDeniedError struct {
	Reason string
}

func (e *AccessDeniedError) Error() string {
	if e.Reason == "" {
		return "Access denied"
	}
	return "Access denied: " + e.Reason
}

func AccessDenied(reason string) *AccessDeniedError {
	return &AccessDeniedError{Reason: reason}
}

// ConflictError reports an operation blocked by existing state, such as a
// delete refused while dependent rows exist.
type ConflictError struct {
	Message string
	Count   int64
}

func (e *ConflictError) Error() string {
	return e.Message
}

func Conflict(count int64, format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...), Count: count}
}

// HTTPStatus maps err to a response status. Unknown errors are 500.
func HTTPStatus(err error) int {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		denied     *AccessDeniedError
		conflict   *ConflictError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &denied):
		return http.StatusForbidden
	case errors.As(err, &conflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
