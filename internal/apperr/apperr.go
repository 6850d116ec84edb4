// Package apperr defines the error taxonomy shared by the app services and
// the HTTP layer. Services return *Error values; the HTTP layer maps Kind to
// a status code and a sanitized message.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindInsufficientStock
	KindAuth
	KindForbidden
	KindConflict
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return t.Kind == e.Kind
	}
	return errors.Is(e.Err, target)
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string) *Error { return New(KindValidation, msg) }

func NotFound(what string) *Error { return Newf(KindNotFound, "%s not found", what) }

func InsufficientStock(productName string) *Error {
	return Newf(KindInsufficientStock, "insufficient stock for %s", productName)
}

func Conflict(msg string) *Error { return New(KindConflict, msg) }

func Unauthorized(msg string) *Error { return New(KindAuth, msg) }

func Forbidden(msg string) *Error { return New(KindForbidden, msg) }

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf extracts the taxonomy kind from any error in the chain.
// Unrecognized errors are treated as internal faults.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}
