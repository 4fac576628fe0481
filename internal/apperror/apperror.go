// Package apperror defines the error taxonomy shared by services and the HTTP layer.
package apperror

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Error is an application error carrying the HTTP status and the stable code
// returned to clients.
type Error struct {
	status  int
	code    string
	message string
	details interface{}
}

func New(status int, code, message string) *Error {
	return &Error{status: status, code: code, message: message}
}

func (e *Error) Error() string {
	return e.message
}

// Is matches any *Error with the same code, so errors.Is(err, ErrNotFound)
// holds for every NotFound regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.code == e.code
}

func (e *Error) Status() int { return e.status }
func (e *Error) Code() string { return e.code }
func (e *Error) Message() string { return e.message }
func (e *Error) Details() interface{} { return e.details }

// WithMessage returns a copy with a different client-facing message.
func (e *Error) WithMessage(format string, args ...interface{}) *Error {
	cp := *e
	cp.message = fmt.Sprintf(format, args...)
	return &cp
}

// WithDetails returns a copy carrying structured details (field errors, report maps).
func (e *Error) WithDetails(details interface{}) *Error {
	cp := *e
	cp.details = details
	return &cp
}

var (
	ErrValidation      = New(http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed")
	ErrBadRequest      = New(http.StatusBadRequest, "BAD_REQUEST", "Bad request")
	ErrUnauthenticated = New(http.StatusUnauthorized, "UNAUTHORIZED", "Could not validate credentials")
	ErrInvalidToken    = New(http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
	ErrAccountInactive = New(http.StatusBadRequest, "ACCOUNT_INACTIVE", "Inactive user")
	ErrForbidden       = New(http.StatusForbidden, "FORBIDDEN", "You do not have permission to perform this action")
	ErrNotFound        = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrConflict        = New(http.StatusConflict, "CONFLICT", "Resource already exists")
	ErrInternal        = New(http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
)

// NotFound builds a NotFound error naming the missing resource.
func NotFound(resource string) *Error {
	return ErrNotFound.WithMessage("%s not found", resource)
}

// Conflict builds a Conflict error with the given message.
func Conflict(format string, args ...interface{}) *Error {
	return ErrConflict.WithMessage(format, args...)
}

// Validation builds a ValidationError carrying per-field messages.
func Validation(fields map[string]string) *Error {
	return ErrValidation.WithDetails(fields)
}

// From extracts the *Error in err's chain. Anything else becomes ErrInternal
// so the original message never reaches the client.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal
}
