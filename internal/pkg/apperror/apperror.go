package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an application error independently of its transport mapping.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindUnauthenticated Kind = "unauthenticated"
	KindAuthorization   Kind = "authorization"
	KindNotFound        Kind = "not_found"
	KindState           Kind = "state"
	KindConflict        Kind = "conflict"
	KindInternal        Kind = "internal"
)

// AppError is a custom error type that includes an HTTP status code and an optional internal error code.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Kind    Kind   // Error class, used by callers that do not speak HTTP
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
// The kind is derived from the status code.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kindFromCode(code),
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kindFromCode(code),
		Message: message,
		Err:     err,
	}
}

// Validation reports malformed or mutually exclusive input.
func Validation(message string) *AppError {
	return New(http.StatusBadRequest, message)
}

// Forbidden reports an actor without the required standing.
func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message)
}

// NotFound reports a missing referenced record.
func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message)
}

// State reports an illegal transition given the current status.
// It maps onto 400 on the wire while keeping its own kind.
func State(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindState,
		Message: message,
	}
}

// Internal hides err behind a generic message.
func Internal(err error) *AppError {
	return Wrap(err, http.StatusInternalServerError, "internal server error")
}

// KindOf returns the Kind of err, or KindInternal if err is not an AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func kindFromCode(code int) Kind {
	switch code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusUnauthorized:
		return KindUnauthenticated
	case http.StatusForbidden:
		return KindAuthorization
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	default:
		return KindInternal
	}
}
