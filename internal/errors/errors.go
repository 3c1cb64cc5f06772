package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors. Each pipeline stage fails with
// exactly one of these.
const (
	ErrPrivilege = "PRIVILEGE"
	ErrParse     = "PARSE"
	ErrConfig    = "CONFIG"
	ErrTransport = "TRANSPORT"
	ErrVersion   = "VERSION"
	ErrCapacity  = "CAPACITY"
	ErrBootstrap = "BOOTSTRAP"
	ErrSession   = "SESSION"
	ErrLock      = "LOCK"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// The formatted output is:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrTransport code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrTransport,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Detail returns the text printed under a failed status line: the cause
// followed by the suggestion, either of which may be empty.
func (e *Error) Detail() string {
	var parts []string
	if e.Cause != nil {
		parts = append(parts, strings.TrimSpace(e.Cause.Error()))
	}
	if e.Suggestion != "" {
		parts = append(parts, e.Suggestion)
	}
	return strings.Join(parts, "\n")
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var geoErr *Error
	if errors.As(err, &geoErr) {
		return geoErr.Code == code
	}
	return false
}

// ExitCode maps an error to the process exit status. Every failure,
// including an interrupted run, exits with 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
