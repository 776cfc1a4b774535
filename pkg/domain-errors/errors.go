// Package domainerrors defines the outcome taxonomy shared by services and the
// HTTP gateway. Services return *Error values; the gateway maps each Code to a
// wire status and only ever exposes Message to callers.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a failure. Values match the callable-function error codes
// used by mobile clients.
type Code string

const (
	CodeInvalidArgument    Code = "invalid-argument"
	CodeFailedPrecondition Code = "failed-precondition"
	CodeNotFound           Code = "not-found"
	CodePermissionDenied   Code = "permission-denied"
	CodeResourceExhausted  Code = "resource-exhausted"
	CodeInternal           Code = "internal"

	// CodeInvariantViolation is raised by model constructors. Services convert
	// it before it reaches the gateway.
	CodeInvariantViolation Code = "invariant-violation"
)

// Error carries a classified outcome, a client-safe message and an optional
// cause kept for logs.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a classified error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap classifies err. The cause stays reachable with errors.Is/As.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether the outermost domain error in err's chain has code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost domain error, or CodeInternal when
// err is not classified.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// IsClassified reports whether err carries a domain error anywhere in its chain.
func IsClassified(err error) bool {
	var de *Error
	return errors.As(err, &de)
}

// MessageOf returns the client-safe message of the outermost domain error.
// Unclassified errors yield fallback.
func MessageOf(err error, fallback string) string {
	var de *Error
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return fallback
}
