// Package apperr carries an HTTP status alongside an error so a single
// middleware can render every failure the same way.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
)

type Error struct {
	Status  int
	Message string
	Err     error
	Stack   string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(status int, msg string, err error) *Error {
	return &Error{Status: status, Message: msg, Err: err, Stack: string(debug.Stack())}
}

func BadRequest(msg string) *Error   { return newError(http.StatusBadRequest, msg, nil) }
func Unauthorized(msg string) *Error { return newError(http.StatusUnauthorized, msg, nil) }
func Forbidden(msg string) *Error    { return newError(http.StatusForbidden, msg, nil) }
func NotFound(msg string) *Error     { return newError(http.StatusNotFound, msg, nil) }
func Conflict(msg string) *Error     { return newError(http.StatusConflict, msg, nil) }

// Internal wraps an unexpected failure; msg is what the caller sees.
func Internal(msg string, err error) *Error {
	return newError(http.StatusInternalServerError, msg, err)
}

// StatusOf returns the status carried by err, or 500.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}
