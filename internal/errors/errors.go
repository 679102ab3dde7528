// Package errors carries the application-layer error envelope. Engine
// packages return their own typed errors; this package classifies them with
// stable codes for the API and CLI surfaces.
package errors

import (
	"fmt"

	"vvengine/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an error with additional context, preserving an existing code
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{Code: appErr.Code, Message: message, Cause: appErr}
	}
	return &AppError{Code: CodeInternalError, Message: message, Cause: err}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeDomainError      = "DOMAIN_ERROR"
	CodeConvergence      = "CONVERGENCE_ERROR"
	CodeInsufficientData = "INSUFFICIENT_DATA"
	CodeNotFound         = "NOT_FOUND"
	CodeInternalError    = "INTERNAL_ERROR"
)

// ConfigInvalid builds a configuration error
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// InvalidInput builds a malformed-request error
func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// FromEngine classifies an engine error under a stable code. The engine's own
// message already names the offending parameter and the valid range, so it is
// carried through verbatim for audit documentation.
func FromEngine(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}

	code := CodeInternalError
	switch {
	case core.IsDomainError(err):
		code = CodeDomainError
	case core.IsInsufficientDataError(err):
		code = CodeInsufficientData
	case core.IsConvergenceError(err):
		code = CodeConvergence
	}
	return &AppError{Code: code, Message: err.Error(), Cause: err}
}
