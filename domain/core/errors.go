package core

import (
	"errors"
	"fmt"
)

// Error is a structured application error carrying a stable code.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap wraps an error with additional context, preserving an existing code.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return &Error{Code: appErr.Code, Message: message, Cause: err}
	}
	return &Error{Code: CodeComputeError, Message: message, Cause: err}
}

// Wrapf wraps an error with formatted additional context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if err is an Error, otherwise "UNKNOWN".
func GetCode(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	return GetCode(err) == code
}

// Predefined error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeValidationError = "VALIDATION_ERROR"
	CodeComputeError    = "COMPUTE_ERROR"
	CodeIOError         = "IO_ERROR"
)

// ConfigInvalid reports an invalid caller-supplied configuration value.
// Configuration errors are fatal to the call that raised them.
func ConfigInvalid(message string) *Error {
	return New(CodeConfigInvalid, message)
}

func ConfigInvalidf(format string, args ...interface{}) *Error {
	return New(CodeConfigInvalid, fmt.Sprintf(format, args...))
}

// Validation reports malformed or inconsistent input data.
func Validation(message string) *Error {
	return New(CodeValidationError, message)
}

func Validationf(format string, args ...interface{}) *Error {
	return New(CodeValidationError, fmt.Sprintf(format, args...))
}

// Compute reports a failure inside a metric computation.
func Compute(message string) *Error {
	return New(CodeComputeError, message)
}

func Computef(format string, args ...interface{}) *Error {
	return New(CodeComputeError, fmt.Sprintf(format, args...))
}

// IO reports a failure reading or writing external data.
func IO(message string, cause error) *Error {
	return &Error{Code: CodeIOError, Message: message, Cause: cause}
}
