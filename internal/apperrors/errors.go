package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind string

const (
	Unauthorized   Kind = "unauthorized"
	Forbidden      Kind = "forbidden"
	NotFound       Kind = "not_found"
	InvalidRequest Kind = "invalid_request"
	InvalidState   Kind = "invalid_state"
	Conflict       Kind = "conflict"
	Internal       Kind = "internal"
)

// Error is a classified failure: Kind drives the HTTP status, Code is the
// stable machine-readable identifier, Message is for humans.
type Error struct {
	Kind    Kind   `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"error"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Wrap(kind Kind, code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, cause: cause}
}

// Common constructors used across services.

func NotFoundf(code, format string, args ...any) *Error {
	return New(NotFound, code, fmt.Sprintf(format, args...))
}

func Forbiddenf(format string, args ...any) *Error {
	return New(Forbidden, "forbidden", fmt.Sprintf(format, args...))
}

func InvalidStatef(code, format string, args ...any) *Error {
	return New(InvalidState, code, fmt.Sprintf(format, args...))
}

func Internalf(format string, args ...any) *Error {
	return New(Internal, "internal", fmt.Sprintf(format, args...))
}

// Domain-specific codes referenced by the handlers and tests.

func MissingPhoto() *Error {
	return New(InvalidRequest, "missing_photo", "task requires a photo")
}

func MissingNotes() *Error {
	return New(InvalidRequest, "missing_notes", "task requires notes")
}

func AlreadyCompleted() *Error {
	return New(Conflict, "already_completed", "task already completed for this assignment")
}

func ActiveTransferExists() *Error {
	return New(Conflict, "active_transfer_exists", "assignment already has an active transfer")
}

// From extracts an *Error, wrapping unknown errors as Internal.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Wrap(Internal, "internal", "internal error", err)
}

// HTTPStatus maps the taxonomy onto response codes.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case InvalidRequest:
		return http.StatusBadRequest
	case InvalidState:
		return http.StatusConflict
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
