// Package errors provides typed error definitions for orbit.
// This package consolidates error handling and provides structured error types
// that can be used for better error classification and handling.
package errors

import "fmt"

// ErrorCode represents a unique identifier for different error types
type ErrorCode string

const (
	// Configuration errors
	ErrConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrConfigParse      ErrorCode = "CONFIG_PARSE"
	ErrConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Resolution errors
	ErrNoPlanet         ErrorCode = "NO_PLANET"
	ErrOrbitNotFound    ErrorCode = "ORBIT_NOT_FOUND"
	ErrInvalidSelection ErrorCode = "INVALID_SELECTION"

	// Collision errors
	ErrOrbitExists ErrorCode = "ORBIT_EXISTS"
	ErrOrbitStale  ErrorCode = "ORBIT_STALE"

	// External tool errors
	ErrGitCommand  ErrorCode = "GIT_COMMAND"
	ErrTmuxCommand ErrorCode = "TMUX_COMMAND"

	// Git state errors
	ErrDetachedHead     ErrorCode = "GIT_DETACHED_HEAD"
	ErrBranchCheckedOut ErrorCode = "GIT_BRANCH_CHECKED_OUT"

	// State store errors
	ErrStateParse      ErrorCode = "STATE_PARSE"
	ErrStateValidation ErrorCode = "STATE_VALIDATION"
	ErrStateWrite      ErrorCode = "STATE_WRITE"

	// Validation errors
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrInvalidPath  ErrorCode = "INVALID_PATH"

	// Internal errors
	ErrInternal ErrorCode = "INTERNAL_ERROR"
)

// OrbitError represents a structured error with additional context
type OrbitError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details string                 `json:"details,omitempty"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *OrbitError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *OrbitError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *OrbitError) WithContext(key string, value interface{}) *OrbitError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new OrbitError
func New(code ErrorCode, message string) *OrbitError {
	return &OrbitError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new OrbitError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *OrbitError {
	return &OrbitError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewWithDetails creates a new OrbitError with details
func NewWithDetails(code ErrorCode, message, details string) *OrbitError {
	return &OrbitError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Wrap creates a new OrbitError that wraps an existing error
func Wrap(code ErrorCode, message string, cause error) *OrbitError {
	return &OrbitError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetails creates a new OrbitError with details that wraps an existing error
func WrapWithDetails(code ErrorCode, message, details string, cause error) *OrbitError {
	return &OrbitError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// GetCode extracts the error code from an error, if it's an OrbitError
func GetCode(err error) ErrorCode {
	if oe, ok := err.(*OrbitError); ok {
		return oe.Code
	}
	return ""
}

// HasCode checks if an error has a specific error code
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}
