package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes an error for the caller. It never carries internal detail.
type Kind string

const (
	KindUnauthenticated   Kind = "unauthenticated"
	KindInvalidArgument   Kind = "invalid-argument"
	KindNotFound          Kind = "not-found"
	KindAlreadyExists     Kind = "already-exists"
	KindResourceExhausted Kind = "resource-exhausted"
	KindInternal          Kind = "internal"
)

// Error is an error with a caller-facing kind and message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Unauthenticated reports a request without a verified caller.
func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

// InvalidArgument reports a request rejected before any store access.
func InvalidArgument(msg string) *Error {
	return &Error{Kind: KindInvalidArgument, Message: msg}
}

// NotFound reports a missing or foreign resource.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// AlreadyExists reports a create that collides with an existing resource.
func AlreadyExists(msg string) *Error {
	return &Error{Kind: KindAlreadyExists, Message: msg}
}

// ResourceExhausted reports a caller over its request quota.
func ResourceExhausted(msg string) *Error {
	return &Error{Kind: KindResourceExhausted, Message: msg}
}

// Internal wraps a store or unexpected failure. msg is what the caller sees.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of err, or KindInternal for errors without one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message of err. Errors without a kind
// get a generic message so internal detail never leaks.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "An internal error occurred."
}

// HTTPStatus maps a kind to its HTTP status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAlreadyExists:
		return http.StatusConflict
	case KindResourceExhausted:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
