package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Manifest errors
	ErrDeserialization ErrorCode = "DESERIALIZATION"
	ErrVersionMismatch ErrorCode = "VERSION_MISMATCH"

	// Filesystem errors
	ErrClobberDenied ErrorCode = "CLOBBER_DENIED"
	ErrMissingTarget ErrorCode = "MISSING_TARGET"
	ErrIOFailure     ErrorCode = "IO_FAILURE"
)

// Process exit statuses
const (
	ExitOK              = 0
	ExitFailure         = 1
	ExitVersionMismatch = 2
	ExitDeserialization = 3
)

// Error represents a structured error with code and details
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is an *Error with the same code
func (e *Error) Is(target error) bool {
	var targetErr *Error
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new Error with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var codedErr *Error
	if errors.As(err, &codedErr) {
		return codedErr.Code == code
	}
	return false
}

// GetErrorCode returns the outermost code found in the chain, or ErrUnknown
func GetErrorCode(err error) ErrorCode {
	var codedErr *Error
	if errors.As(err, &codedErr) {
		return codedErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if it carries none
func GetErrorDetails(err error) map[string]interface{} {
	var codedErr *Error
	if errors.As(err, &codedErr) {
		return codedErr.Details
	}
	return nil
}

// ExitCode maps an error to the process exit status.
//
// Manifest problems get their own statuses so that callers (activation
// scripts, CI) can tell a bad manifest from a failed apply. Everything
// else, including errors that carry no code, is a generic failure.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch {
	case chainHasCode(err, ErrVersionMismatch):
		return ExitVersionMismatch
	case chainHasCode(err, ErrDeserialization):
		return ExitDeserialization
	default:
		return ExitFailure
	}
}

// chainHasCode looks past the outermost *Error, so a loader error wrapped
// by a caller with a different code still maps to its own exit status.
func chainHasCode(err error, code ErrorCode) bool {
	for err != nil {
		var codedErr *Error
		if !errors.As(err, &codedErr) {
			return false
		}
		if codedErr.Code == code {
			return true
		}
		err = codedErr.Wrapped
	}
	return false
}
