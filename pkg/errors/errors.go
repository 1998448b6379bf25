// Package errors defines the typed errors returned by services and their
// mapping to HTTP responses.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindPermission
	KindUnauthorized
	KindConflict
)

var kindStatus = map[Kind]int{
	KindInternal:     http.StatusInternalServerError,
	KindNotFound:     http.StatusNotFound,
	KindValidation:   http.StatusBadRequest,
	KindPermission:   http.StatusForbidden,
	KindUnauthorized: http.StatusUnauthorized,
	KindConflict:     http.StatusConflict,
}

var kindCode = map[Kind]string{
	KindInternal:     "INTERNAL_ERROR",
	KindNotFound:     "NOT_FOUND",
	KindValidation:   "VALIDATION_ERROR",
	KindPermission:   "PERMISSION_DENIED",
	KindUnauthorized: "UNAUTHORIZED",
	KindConflict:     "CONFLICT",
}

// Error is an application error. Message is shown to the user as is.
type Error struct {
	Kind    Kind
	Message string
	// Field names the offending input of a validation error
	Field string
	Cause error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindValidation && e.Field != "":
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	case e.Kind == KindInternal && e.Cause != nil:
		return fmt.Sprintf("internal error: %s (caused by: %v)", e.Message, e.Cause)
	case e.Kind == KindInternal:
		return "internal error: " + e.Message
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus is the response status of the error
func (e *Error) HTTPStatus() int {
	return kindStatus[e.Kind]
}

// Code is the machine readable error code sent with the response
func (e *Error) Code() string {
	return kindCode[e.Kind]
}

// NewNotFoundError reports a missing record of a doctype
func NewNotFoundError(doctype, name string) *Error {
	msg := doctype + " not found"
	if name != "" {
		msg = fmt.Sprintf("%s with ID '%s' not found", doctype, name)
	}
	return &Error{Kind: KindNotFound, Message: msg}
}

// NotFoundf creates a not found error with a formatted message
func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewValidationError(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// Invalid creates a validation error not tied to a field
func Invalid(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewPermissionError reports a denied action on a doctype
func NewPermissionError(action, doctype string) *Error {
	return &Error{Kind: KindPermission, Message: fmt.Sprintf("permission denied: cannot %s %s", action, doctype)}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindPermission, Message: message}
}

func NewUnauthorizedError(reason string) *Error {
	msg := "unauthorized"
	if reason != "" {
		msg += ": " + reason
	}
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// Conflict reports a change refused because of the current state of the data
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewLinkExistsError reports a record that other documents still refer to
func NewLinkExistsError(doctype string) *Error {
	return Conflict(doctype + " is still linked with another document")
}

func NewInternalError(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause}
}

// KindOf returns the kind of the first Error in err's chain. Errors that are
// not application errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

func IsNotFound(err error) bool   { return is(err, KindNotFound) }
func IsValidation(err error) bool { return is(err, KindValidation) }
func IsPermission(err error) bool { return is(err, KindPermission) }
func IsConflict(err error) bool   { return is(err, KindConflict) }

// GetHTTPStatus returns the response status for err, 500 for foreign errors
func GetHTTPStatus(err error) int {
	return kindStatus[KindOf(err)]
}

// GetErrorCode returns the error code for err, UNKNOWN_ERROR for foreign errors
func GetErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code()
	}
	return "UNKNOWN_ERROR"
}
