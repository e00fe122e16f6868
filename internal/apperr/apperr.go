// Package apperr defines the error taxonomy shared by the organization
// core: NotFound, Conflict, BadRequest and NotAuthorized. Errors carry a
// user-facing message and unwrap to a taxonomy sentinel so transport
// layers can classify them with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not_found")
	ErrConflict      = errors.New("conflict")
	ErrBadRequest    = errors.New("bad_request")
	ErrNotAuthorized = errors.New("not_authorized")
)

// Error pairs a taxonomy sentinel with a human-readable message.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

func NotFoundf(format string, args ...any) error {
	return &Error{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Error{kind: ErrConflict, msg: fmt.Sprintf(format, args...)}
}

func BadRequestf(format string, args ...any) error {
	return &Error{kind: ErrBadRequest, msg: fmt.Sprintf(format, args...)}
}

func NotAuthorizedf(format string, args ...any) error {
	return &Error{kind: ErrNotAuthorized, msg: fmt.Sprintf(format, args...)}
}
