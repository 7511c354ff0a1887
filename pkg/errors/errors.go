package errors

import (
	"errors"
	"fmt"
)

// Startup failure codes. Each maps to its own process exit status.
const (
	CodeConfig     = "config"
	CodeCredential = "credential"
	CodePageTokens = "page_tokens"
	CodeBootstrap  = "bootstrap"
)

var exitCodes = map[string]int{
	CodeConfig:     1,
	CodeCredential: 2,
	CodePageTokens: 3,
	CodeBootstrap:  4,
}

// Error represents a custom error type
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// NewWithCode creates a new coded error with a message
func NewWithCode(code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WrapWithCode wraps an error with a code and message
func WrapWithCode(err error, code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// GetCode returns the outermost error code if it exists
func GetCode(err error) string {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return ""
		}
		if e.Code != "" {
			return e.Code
		}
		err = e.Err
	}
	return ""
}

// ExitCode returns the process exit status for a startup error.
// Uncoded errors exit with the configuration status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := exitCodes[GetCode(err)]; ok {
		return code
	}
	return exitCodes[CodeConfig]
}
