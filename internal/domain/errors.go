package domain

import (
	"errors"
	"net/http"
	"runtime/debug"
)

// AppError 统一业务错误，Code 直接使用 HTTP 状态码
type AppError struct {
	Code  int
	Msg   string
	Err   error
	Stack string
}

func (e *AppError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "app error"
}

func (e *AppError) Unwrap() error { return e.Err }

func newErr(code int, msg string, err error) *AppError {
	return &AppError{Code: code, Msg: msg, Err: err, Stack: string(debug.Stack())}
}

func BadRequest(msg string) error   { return newErr(http.StatusBadRequest, msg, nil) }
func Unauthorized(msg string) error { return newErr(http.StatusUnauthorized, msg, nil) }
func Forbidden(msg string) error    { return newErr(http.StatusForbidden, msg, nil) }
func NotFound(msg string) error     { return newErr(http.StatusNotFound, msg, nil) }
func Conflict(msg string) error     { return newErr(http.StatusConflict, msg, nil) }
func Internal(msg string, err error) error {
	return newErr(http.StatusInternalServerError, msg, err)
}

// CodeOf returns the HTTP status carried by err, 500 for foreign errors.
func CodeOf(err error) int {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return http.StatusInternalServerError
}
