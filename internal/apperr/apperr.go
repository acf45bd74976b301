// Package apperr defines the error taxonomy shared by every core operation.
//
// Expected failures (bad token, missing group, forbidden action, ...) are returned as
// *Error values carrying one Kind and a message that names the failed precondition.
// Anything that is not an *Error is an internal fault.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an expected failure.
type Kind string

const (
	// KindInternal is reported for errors that carry no taxonomy kind.
	KindInternal Kind = "INTERNAL"
	// KindUnauthenticated indicates a missing, invalid or revoked session token.
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	// KindForbidden indicates an authenticated caller lacking the capability.
	KindForbidden Kind = "FORBIDDEN"
	// KindNotFound indicates an id or join code that does not resolve.
	KindNotFound Kind = "NOT_FOUND"
	// KindConflict covers duplicates, already-a-member and inverted budgets.
	KindConflict Kind = "CONFLICT"
	// KindValidationFailed covers malformed input and missing member preferences.
	KindValidationFailed Kind = "VALIDATION_FAILED"
	// KindUpstreamUnavailable indicates the place-search provider failed.
	KindUpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"
)

// Error is an expected, caller-presentable failure.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind, so callers can write
// errors.Is(err, apperr.Forbidden("")).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the presentable message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func ValidationFailed(msg string) *Error {
	return &Error{Kind: KindValidationFailed, Message: msg}
}

// UpstreamUnavailable wraps a place-search failure.
func UpstreamUnavailable(msg string, cause error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Message: msg, Cause: cause}
}
