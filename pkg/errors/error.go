// Package errors carries coded errors through the graph, node, simulation and
// data layers of argo-forge.
//
// Every code belongs to a Category (see ErrorCode.Category). The HTTP API maps
// categories to status codes and the CLI prints the code in front of the
// message:
//
//	err := errors.Newf(errors.ErrCodeUnknownNode, "unknown logic subtype %q", subtype)
//	err = fmt.Errorf("node %s: %w", id, err)
//	errors.HasCode(err, errors.ErrCodeUnknownNode)         // true
//	errors.CategoryOf(err) == errors.CategoryNode           // true
//	errors.Is(err, errors.New(errors.ErrCodeUnknownNode, "")) // true, codes match
package errors

import (
	"errors"
	"fmt"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New returns an Error without a cause.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches code and message to cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%d] %s", e.Code, e.Message)
	}

	return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error target carrying the same code, so a bare
// errors.New(code, "") works as a sentinel.
func (e *Error) Is(target error) bool {
	var coded *Error
	if !errors.As(target, &coded) {
		return false
	}

	return coded.Code == e.Code
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode returns the code of the outermost *Error in err's chain, or
// ErrCodeUnknown when there is none.
func GetCode(err error) ErrorCode {
	var coded *Error
	if err == nil || !errors.As(err, &coded) {
		return ErrCodeUnknown
	}

	return coded.Code
}

// HasCode reports whether the outermost coded error in err's chain has code.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// CategoryOf is the category of GetCode(err).
func CategoryOf(err error) Category {
	return GetCode(err).Category()
}
