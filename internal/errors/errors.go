package errors

import (
	"fmt"
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
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
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
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeDatabaseError = "DATABASE_ERROR"
	CodeEligibility   = "ELIGIBILITY"
	CodeValidation    = "VALIDATION_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeGateError     = "GATE_ERROR"
	CodeInternalError = "INTERNAL_ERROR"
)

// Common error constructors

// ConfigInvalid marks a configuration problem detected at load time
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// Eligibility marks a start precondition failure; the message is the
// human-readable reason returned to the client
func Eligibility(message string) *AppError {
	return New(CodeEligibility, message)
}

// Validation marks malformed or out-of-range client input
func Validation(message string) *AppError {
	return New(CodeValidation, message)
}

// NotFound marks a required session state that does not exist, e.g. no
// session awaiting questionnaire
func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

// GateError marks a distraction-gate failure that the call site treats
// as fatal
func GateError(cause error) *AppError {
	return &AppError{
		Code:    CodeGateError,
		Message: "distraction gate error",
		Cause:   cause,
	}
}

// DatabaseError wraps a store failure
func DatabaseError(cause error) *AppError {
	return &AppError{
		Code:    CodeDatabaseError,
		Message: "store error",
		Cause:   cause,
	}
}
