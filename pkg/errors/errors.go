// Package errors provides structured error types for pybundle.
//
// Every failure that crosses a package boundary carries a machine-readable
// [Code] so the CLI and the HTTP API can map it to an exit status or a
// response without matching on message text.
//
// # Error Codes
//
//   - INVALID_*: input and configuration validation failures
//   - FILE_*: filesystem failures while scanning or writing the bundle
//   - INSTALLER_* / DOWNLOAD_* / INTERPRETER_*: external process failures
//   - NETWORK_ERROR: package index lookups
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "unknown format: %s", f)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	err := errors.Wrap(errors.ErrCodeFileRead, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies a class of failure.
type Code string

const (
	// Bad arguments, config values, names or file contents.
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidPackage  Code = "INVALID_PACKAGE"
	ErrCodeInvalidFilename Code = "INVALID_FILENAME"
	ErrCodeInvalidEncoding Code = "INVALID_ENCODING"
	ErrCodeInvalidScript   Code = "INVALID_SCRIPT"

	ErrCodeFileRead  Code = "FILE_READ"
	ErrCodeFileWrite Code = "FILE_WRITE"

	// The installer subprocess failed for one package, or for at least one
	// package of a strict run.
	ErrCodeInstallerFailed Code = "INSTALLER_FAILED"
	ErrCodeDownloadFailed  Code = "DOWNLOAD_FAILED"

	// The Python interpreter could not list its modules.
	ErrCodeInterpreterFailed Code = "INTERPRETER_FAILED"

	// The package index could not be reached.
	ErrCodeNetwork Code = "NETWORK_ERROR"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Invalid reports whether c is one of the INVALID_* codes, i.e. the caller
// can fix the failure by changing its input.
func (c Code) Invalid() bool {
	return strings.HasPrefix(string(c), "INVALID_")
}

// Error carries a [Code], a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error formats as "CODE: message" followed by ": cause" when present.
func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is [New] with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage is err's text without the code prefix.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
