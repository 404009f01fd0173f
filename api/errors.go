package api

import (
	"errors"
	"fmt"
)

// v4 接口返回码
const (
	CodeSuccess        = 0
	CodeParamsError    = -1
	CodeNetworkError   = -2
	CodeIntegrityError = -3

	CodeIndexNotExist    = -166
	CodeDirNotEmpty      = -173
	CodeIndexExist       = -177
	CodeSameFileUploaded = -4018
)

// Error is a business-level failure reported by the v4 API.
type Error struct {
	Code      int
	Message   string
	RequestID string
}

func (e *Error) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("cos: %s (code %d, request %s)", e.Message, e.Code, e.RequestID)
	}
	return fmt.Sprintf("cos: %s (code %d)", e.Message, e.Code)
}

// TransportError wraps failures that happen before a v4 envelope is received.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("cos %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Code 返回 err 中的接口返回码，err 不是 *Error 时返回 false
func Code(err error) (int, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

// IsNotExist 对象不存在
func IsNotExist(err error) bool {
	code, ok := Code(err)
	return ok && code == CodeIndexNotExist
}

// IsExist 对象已存在
func IsExist(err error) bool {
	code, ok := Code(err)
	return ok && (code == CodeIndexExist || code == CodeSameFileUploaded)
}
