// Package apierror defines the closed set of errors the service reports to
// callers. Each Kind maps onto exactly one HTTP status in the web layer.
package apierror

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind uint8

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindKeypair
	KindRemote
	KindTransaction
	KindMalformedBody
)

const internalMessage = "Internal server error"

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindKeypair:
		return "keypair"
	case KindRemote:
		return "remote"
	case KindTransaction:
		return "transaction"
	case KindMalformedBody:
		return "malformed_body"
	default:
		return "internal"
	}
}

func (k Kind) prefix() string {
	switch k {
	case KindInvalidInput:
		return "Invalid input"
	case KindKeypair:
		return "Keypair error"
	case KindRemote:
		return "Solana RPC error"
	case KindTransaction:
		return "Transaction failed"
	case KindMalformedBody:
		return "JSON error"
	default:
		return internalMessage
	}
}

// Error is an error that is safe to describe to API callers.
type Error struct {
	Kind Kind

	// Field is the request field the error refers to, if any.
	Field string

	Message string

	cause error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind.prefix(), msg)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Public returns the message exposed to API callers. Internal errors never
// leak their details.
func (e *Error) Public() string {
	if e.Kind == KindInternal {
		return internalMessage
	}
	return e.Error()
}

func newError(kind Kind, field string, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		cause:   cause,
	}
}

func InvalidInput(field, format string, args ...interface{}) *Error {
	return newError(KindInvalidInput, field, nil, format, args...)
}

func Keypair(field string, cause error, format string, args ...interface{}) *Error {
	return newError(KindKeypair, field, cause, format, args...)
}

func Transaction(cause error, format string, args ...interface{}) *Error {
	return newError(KindTransaction, "", cause, format, args...)
}

// Remote reports a failure of the upstream RPC node, including timeouts.
func Remote(cause error) *Error {
	return &Error{
		Kind:    KindRemote,
		Message: cause.Error(),
		cause:   cause,
	}
}

func MalformedBody(cause error) *Error {
	return &Error{
		Kind:    KindMalformedBody,
		Message: cause.Error(),
		cause:   cause,
	}
}

func MissingField(field string) *Error {
	return newError(KindMalformedBody, "", nil, "missing field `%s`", field)
}

func Internal(cause error) *Error {
	return &Error{
		Kind:    KindInternal,
		Message: cause.Error(),
		cause:   cause,
	}
}

// From classifies err. Anything that is not already an *Error is internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(err)
}

// KindOf returns the Kind of err, or KindInternal when err is unclassified.
func KindOf(err error) Kind {
	if apiErr := From(err); apiErr != nil {
		return apiErr.Kind
	}
	return KindInternal
}
