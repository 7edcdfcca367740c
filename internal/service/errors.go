// Package service implements the action handlers: each validates an
// incoming action, applies it against the durable store inside a single
// unit of work, and produces zero or more fan-out events.
package service

import (
	"errors"
)

// Kind discriminates handler failures so callers and tests can tell
// them apart instead of parsing messages.
type Kind int

const (
	// KindUnexpected is any persistence failure that is not one of the
	// typed conditions. The unit of work is rolled back whole.
	KindUnexpected Kind = iota

	// KindNotFound reports a referenced entity that does not exist.
	KindNotFound

	// KindUnauthorized reports an action on something the requester does
	// not own. The request is ignored, not answered.
	KindUnauthorized

	// KindUnknownAction reports an unrecognized action name.
	KindUnknownAction

	// KindInvalid reports a request that failed validation before any
	// store work.
	KindInvalid
)

// Error is a handler failure with a wire-ready message.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// NotFound builds a not-found failure with the given message.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Unauthorized builds an unauthorized failure.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// UnknownAction builds a failure for an unrecognized action name.
func UnknownAction(action string) *Error {
	return &Error{Kind: KindUnknownAction, Message: "unknown action: " + action}
}

// Invalid builds a validation failure.
func Invalid(message string) *Error {
	return &Error{Kind: KindInvalid, Message: message}
}

// Unexpected wraps an arbitrary failure, keeping the underlying message.
func Unexpected(err error) *Error {
	return &Error{Kind: KindUnexpected, Message: err.Error(), cause: err}
}

// KindOf extracts the failure kind; plain errors are KindUnexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}
