// Package apperror defines the error taxonomy surfaced to API callers.
//
// Every failure a handler reports is an *Error carrying a Kind. The Kind picks
// the default HTTP status; Status overrides it where the API deliberately
// answers with a different code.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error for callers.
type Kind string

const (
	KindValidation      Kind = "VALIDATION"
	KindConflict        Kind = "CONFLICT"
	KindNotFound        Kind = "NOT_FOUND"
	KindAuthentication  Kind = "AUTHENTICATION"
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindInvalidToken    Kind = "INVALID_TOKEN"
	KindForbidden       Kind = "FORBIDDEN"
	KindUpload          Kind = "UPLOAD"
	KindInternal        Kind = "INTERNAL"
)

// HTTPStatus returns the default status code for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthentication, KindUnauthenticated, KindInvalidToken:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindUpload:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is the application error type.
type Error struct {
	Kind    Kind
	Status  int      // overrides Kind.HTTPStatus when non-zero
	Message string   // safe to show to callers
	Details []string // per-field problems, rendered as "errors"
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by kind, so errors.Is(err, apperror.ErrNotFound)
// works for any not-found error regardless of message.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// HTTPStatus returns the status code to answer with.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return e.Kind.HTTPStatus()
}

// WithStatus returns a copy of e answering with status.
func (e *Error) WithStatus(status int) *Error {
	cp := *e
	cp.Status = status
	return &cp
}

// Kind markers for errors.Is.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrAuthentication  = &Error{Kind: KindAuthentication}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrInvalidToken    = &Error{Kind: KindInvalidToken}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrUpload          = &Error{Kind: KindUpload}
	ErrInternal        = &Error{Kind: KindInternal}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Validation(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Authentication(message string) *Error {
	return New(KindAuthentication, message)
}

func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, message)
}

func InvalidToken(cause error) *Error {
	return Wrap(KindInvalidToken, "invalid token", cause)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func Upload(message string, cause error) *Error {
	return Wrap(KindUpload, message, cause)
}

func Internal(message string, cause error) *Error {
	return Wrap(KindInternal, message, cause)
}

// From extracts the *Error from err's chain. Anything else becomes an
// internal error wrapping err.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("server error", err)
}
