// Package apperr defines the error taxonomy shared by the services and
// the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	// KindValidation marks malformed or disallowed input.
	KindValidation Kind = iota + 1
	// KindConflict marks an identifier collision with existing data.
	KindConflict
	// KindNotFound marks a reference to an absent record.
	KindNotFound
	// KindDependency marks a failure in an underlying store or service.
	KindDependency
)

// Error carries a kind, a short human-readable message, and an optional
// wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "application error"
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a validation error from a format string.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Conflict builds a conflict error from a format string.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// NotFound builds a not-found error from a format string.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Dependency wraps a store or external-service failure, keeping the
// operation name for diagnosis.
func Dependency(op string, err error) *Error {
	return &Error{Kind: KindDependency, Msg: fmt.Sprintf("%s failed", op), Err: err}
}

// KindOf extracts the kind from err, or 0 when err carries none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return 0
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsDependency reports whether err is a dependency error.
func IsDependency(err error) bool { return KindOf(err) == KindDependency }

// HTTPStatus maps an error to the status code the JSON surface reports.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
