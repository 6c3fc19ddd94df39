// Package errs carries the business error kinds shared by the services and
// mapped to HTTP status codes at the edge.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindForbidden
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindConflict:
		return "CONFLICT"
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	default:
		return "INTERNAL"
	}
}

// Error is a business error with a kind, a stable code and a human message.
type Error struct {
	Kind    Kind   `json:"-"`
	Code    string `json:"code,omitempty"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind and code so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

func newf(kind Kind, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Title: kind.String(), Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return newf(KindValidation, "INVALID_INPUT", format, args...)
}

func Conflict(format string, args ...any) error {
	return newf(KindConflict, "CONFLICT", format, args...)
}

func Forbidden(format string, args ...any) error {
	return newf(KindForbidden, "FORBIDDEN", format, args...)
}

func NotFound(format string, args ...any) error {
	return newf(KindNotFound, "NOT_FOUND", format, args...)
}

// Internal wraps an unexpected failure.
func Internal(err error, msg string) error {
	return &Error{Kind: KindInternal, Code: "INTERNAL", Title: KindInternal.String(), Message: msg, Err: err}
}

// ErrFull is returned by the inventory ledger when no capacity remains.
var ErrFull = &Error{Kind: KindConflict, Code: "INVENTORY_FULL", Title: "CONFLICT", Message: "no availability left for the requested unit and date"}

// KindOf reports the kind of the first *Error in err's chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to the response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Full is an ErrFull carrying a specific message.
func Full(format string, args ...any) error {
	return &Error{Kind: KindConflict, Code: ErrFull.Code, Title: ErrFull.Title, Message: fmt.Sprintf(format, args...)}
}

// Message returns the human part of err without wrapped causes.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
