// Package apperr defines the machine-readable error taxonomy shared by
// services and handlers. Services return *Error values; handlers map the
// kind onto an HTTP status and echo it in the response envelope.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is a stable, machine-readable error classification.
type Kind string

// Error kinds surfaced to API clients.
const (
	KindNotFound            Kind = "NOT_FOUND"
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindForbidden           Kind = "FORBIDDEN"
	KindInvalidTransition   Kind = "INVALID_TRANSITION"
	KindDuplicateSubmission Kind = "DUPLICATE_SUBMISSION"
	KindValidation          Kind = "VALIDATION_ERROR"
	KindDependency          Kind = "DEPENDENCY_FAILURE"
	KindInternal            Kind = "INTERNAL"
)

// Error carries a kind plus a message safe to show to callers. The wrapped
// cause stays server-side and never leaks into the message.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

// New builds an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches an underlying cause while keeping the outward message clean.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.cause }

// Is matches errors by kind, so sentinel comparisons like
// errors.Is(err, apperr.New(apperr.KindNotFound, "")) work across wrapping.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// KindOf extracts the kind from an error chain, defaulting to KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// MessageOf returns the caller-safe message, or a generic fallback for
// unclassified errors.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
