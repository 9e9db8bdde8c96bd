package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Newf builds an Error whose message is a formatted string.
func Newf(status int, code, format string, args ...any) *Error {
	return &Error{Status: status, Code: code, Err: fmt.Errorf(format, args...)}
}

func BadRequest(code, msg string) *Error   { return New(http.StatusBadRequest, code, errors.New(msg)) }
func Unauthorized(code, msg string) *Error { return New(http.StatusUnauthorized, code, errors.New(msg)) }
func Forbidden(code, msg string) *Error    { return New(http.StatusForbidden, code, errors.New(msg)) }
func NotFound(code, msg string) *Error     { return New(http.StatusNotFound, code, errors.New(msg)) }
func Conflict(code, msg string) *Error     { return New(http.StatusConflict, code, errors.New(msg)) }

// StatusOf reports the HTTP status carried by err, or 0 when err is not an *Error.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}
