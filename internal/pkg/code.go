package pkg

import (
	"errors"
	"net/http"
)

// AppError 面向接口层的业务错误，Code 即 HTTP 状态码
type AppError struct {
	Code int
	Msg  string
}

func (e *AppError) Error() string {
	return e.Msg
}

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Msg: msg}
}

func BadRequest(msg string) *AppError   { return NewAppError(http.StatusBadRequest, msg) }
func Unauthorized(msg string) *AppError { return NewAppError(http.StatusUnauthorized, msg) }
func Forbidden(msg string) *AppError    { return NewAppError(http.StatusForbidden, msg) }
func NotFound(msg string) *AppError     { return NewAppError(http.StatusNotFound, msg) }
func Conflict(msg string) *AppError     { return NewAppError(http.StatusConflict, msg) }

// AsAppError 判断是否业务错误
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
