// Package errors provides coded error types for Buddy Studio.
//
// Codes follow the degradation taxonomy of the studio: a missing platform
// capability, a playback refused by the platform, an interruption caused by
// our own cancellation, and a drawing surface that could not be used. Game
// code never sees these from the audio or speech paths; they surface only in
// logs and in the configuration, export and CLI layers.
//
//	err := errors.New(errors.ErrCodeInvalidInput, "unknown tool %q", name)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // reject the input
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeUnavailable  Code = "UNAVAILABLE"
	ErrCodeNotAllowed   Code = "NOT_ALLOWED"
	ErrCodeInterrupted  Code = "INTERRUPTED"
	ErrCodeSurface      Code = "SURFACE"
	ErrCodeIO           Code = "IO_ERROR"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code, or "" for foreign errors.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
