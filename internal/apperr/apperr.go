// internal/apperr/apperr.go
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a workflow failure.
type Kind string

const (
	KindInternal      Kind = "internal"
	KindNotFound      Kind = "not_found"
	KindForbidden     Kind = "forbidden"
	KindInvalidState  Kind = "invalid_state"
	KindConflict      Kind = "conflict"
	KindLimitExceeded Kind = "limit_exceeded"
	KindInvalid       Kind = "invalid"
	KindUnauthorized  Kind = "unauthorized"
)

// Codes refine a kind where callers need to tell two causes apart.
const (
	CodeRateLimited   = "rate_limited"
	CodeRenewalLimit  = "renewal_limit"
	CodeNoCopies      = "no_copies_available"
	CodeDuplicate     = "duplicate"
	CodeCopiesPresent = "copies_available"
)

// Error is returned by every workflow operation. Message is safe to show to the caller.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, apperr.ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Code == "" || t.Code == e.Code)
}

// WithCode returns a copy of e carrying code.
func (e *Error) WithCode(code string) *Error {
	c := *e
	c.Code = code
	return &c
}

// Targets for errors.Is.
var (
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrForbidden     = &Error{Kind: KindForbidden}
	ErrInvalidState  = &Error{Kind: KindInvalidState}
	ErrConflict      = &Error{Kind: KindConflict}
	ErrLimitExceeded = &Error{Kind: KindLimitExceeded}
	ErrInvalid       = &Error{Kind: KindInvalid}
	ErrUnauthorized  = &Error{Kind: KindUnauthorized}
)

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return newf(KindForbidden, format, args...)
}

func InvalidState(format string, args ...any) *Error {
	return newf(KindInvalidState, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newf(KindConflict, format, args...)
}

func LimitExceeded(format string, args ...any) *Error {
	return newf(KindLimitExceeded, format, args...)
}

func Invalid(format string, args ...any) *Error {
	return newf(KindInvalid, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return newf(KindUnauthorized, format, args...)
}

// Internal wraps an infrastructure failure. The message hides err from callers.
func Internal(err error, format string, args ...any) *Error {
	e := newf(KindInternal, format, args...)
	e.Err = err
	return e
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// PublicMessage returns the message that may be surfaced verbatim to the caller.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}
