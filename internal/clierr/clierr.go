// Package clierr is the error taxonomy shared by the CLI and the HTTP
// API. Every error a user can see carries a stable code.
package clierr

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// Code identifies a class of failure. Values are stable wire strings.
type Code string

const (
	TaskNotFound       Code = "TASK_NOT_FOUND"
	BoardNotFound      Code = "BOARD_NOT_FOUND"
	BoardAlreadyExists Code = "BOARD_ALREADY_EXISTS"
	InvalidInput       Code = "INVALID_INPUT"
	InvalidQuadrant    Code = "INVALID_QUADRANT"
	InvalidStatus      Code = "INVALID_STATUS"
	InvalidQuery       Code = "INVALID_QUERY"
	InvalidDate        Code = "INVALID_DATE"
	InvalidTaskID      Code = "INVALID_TASK_ID"
	InvalidGroupBy     Code = "INVALID_GROUP_BY"
	NoChanges          Code = "NO_CHANGES"
	ConfirmationReq    Code = "CONFIRMATION_REQUIRED"
	InternalError      Code = "INTERNAL_ERROR"
)

// status maps codes onto HTTP statuses. Missing codes are server errors.
var status = map[Code]int{
	TaskNotFound:       http.StatusNotFound,
	BoardNotFound:      http.StatusNotFound,
	BoardAlreadyExists: http.StatusConflict,
	InvalidInput:       http.StatusBadRequest,
	InvalidQuadrant:    http.StatusBadRequest,
	InvalidStatus:      http.StatusBadRequest,
	InvalidQuery:       http.StatusBadRequest,
	InvalidDate:        http.StatusBadRequest,
	InvalidTaskID:      http.StatusBadRequest,
	InvalidGroupBy:     http.StatusBadRequest,
	NoChanges:          http.StatusBadRequest,
	ConfirmationReq:    http.StatusBadRequest,
}

// Error is a coded failure. Cause, when set, is the underlying error and
// is never shown to API clients.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	Cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an infrastructure failure as an INTERNAL_ERROR.
func Internal(cause error) *Error {
	return &Error{Code: InternalError, Message: cause.Error(), Cause: cause}
}

// WithDetails attaches machine-readable context and returns e.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// ExitCode is 2 for internal errors and 1 for everything else.
func (e *Error) ExitCode() int {
	if e.Code == InternalError {
		return 2 //nolint:mnd // exit code 2 for internal errors
	}
	return 1
}

func (e *Error) HTTPStatus() int {
	if s, ok := status[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// As returns the *Error in err's chain. Uncoded errors become Internal so
// a storage failure is never reported as a client mistake.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// Is reports whether err carries code.
func Is(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// SilentError sets the exit code without printing anything. Batch
// commands use it after they have written their own results.
type SilentError struct {
	Code int
}

func (e *SilentError) Error() string { return "exit status " + strconv.Itoa(e.Code) }
