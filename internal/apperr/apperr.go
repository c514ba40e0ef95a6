package apperr

import (
	"errors"
	"net/http"
)

// Error categories surfaced in the response envelope.
const (
	CategoryValidation   = "ValidationError"
	CategoryUnauthorized = "Unauthorized"
	CategoryForbidden    = "Forbidden"
	CategoryNotFound     = "NotFound"
	CategoryConflict     = "Conflict"
	CategoryInternal     = "Internal"
)

type Error struct {
	Category string `json:"error"`
	Message  string `json:"message"`
	Status   int    `json:"-"`
	Details  any    `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

func Validation(message string) *Error {
	return &Error{Category: CategoryValidation, Message: message, Status: http.StatusBadRequest}
}

// ValidationWithDetails carries per-field issues alongside the message.
func ValidationWithDetails(message string, details any) *Error {
	return &Error{Category: CategoryValidation, Message: message, Status: http.StatusBadRequest, Details: details}
}

func Unauthorized(message string) *Error {
	return &Error{Category: CategoryUnauthorized, Message: message, Status: http.StatusUnauthorized}
}

func Forbidden(message string) *Error {
	return &Error{Category: CategoryForbidden, Message: message, Status: http.StatusForbidden}
}

func NotFound(message string) *Error {
	return &Error{Category: CategoryNotFound, Message: message, Status: http.StatusNotFound}
}

func Conflict(message string) *Error {
	return &Error{Category: CategoryConflict, Message: message, Status: http.StatusConflict}
}

func Internal(message string) *Error {
	return &Error{Category: CategoryInternal, Message: message, Status: http.StatusInternalServerError}
}

// From maps any error to an *Error, defaulting to Internal with a generic
// message so store errors never leak to callers.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("unexpected error")
}
