package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies why a lottery call was rejected
type ErrorKind string

const (
	ErrorKindUnauthorized    ErrorKind = "UNAUTHORIZED"
	ErrorKindPhaseViolation  ErrorKind = "PHASE_VIOLATION"
	ErrorKindPaymentMismatch ErrorKind = "PAYMENT_MISMATCH"
	ErrorKindWindowClosed    ErrorKind = "WINDOW_CLOSED"
	ErrorKindWindowOpen      ErrorKind = "WINDOW_OPEN"
	ErrorKindNotFound        ErrorKind = "NOT_FOUND"
	ErrorKindConsistency     ErrorKind = "CONSISTENCY"
	ErrorKindInvalidArgument ErrorKind = "INVALID_ARGUMENT"
)

// Error is a rejected lottery call. A rejected call never changes persisted state,
// except ErrorKindConsistency which halts the affected round.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Sentinels for errors.Is checks; they match any *Error of the same kind.
var (
	ErrUnauthorized    = &Error{Kind: ErrorKindUnauthorized}
	ErrPhaseViolation  = &Error{Kind: ErrorKindPhaseViolation}
	ErrPaymentMismatch = &Error{Kind: ErrorKindPaymentMismatch}
	ErrWindowClosed    = &Error{Kind: ErrorKindWindowClosed}
	ErrWindowOpen      = &Error{Kind: ErrorKindWindowOpen}
	ErrNotFound        = &Error{Kind: ErrorKindNotFound}
	ErrConsistency     = &Error{Kind: ErrorKindConsistency}
	ErrInvalidArgument = &Error{Kind: ErrorKindInvalidArgument}
)

// NewError creates an Error of the given kind
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return strings.ToLower(strings.ReplaceAll(string(e.Kind), "_", " "))
	}
	return e.Message
}

// Is matches sentinels by kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// KindOf returns the kind of a lottery error, or "" for any other error
func KindOf(err error) ErrorKind {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Kind
	}
	return ""
}
