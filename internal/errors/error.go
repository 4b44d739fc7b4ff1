package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig    Category = "config"
	CategoryEncode    Category = "encode"
	CategoryFrame     Category = "frame"
	CategoryTransport Category = "transport"
	CategoryCLI       Category = "cli"
)

// PeerwireError is a structured error with a code, an explanation and a
// suggested fix.
type PeerwireError struct {
	// Code is a unique error identifier (e.g., "PW001").
	Code string

	// Category is the error type (config, encode, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example shows a correct invocation or file snippet.
	Example string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *PeerwireError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *PeerwireError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *PeerwireError) WithSuggestion(s string) *PeerwireError {
	e.Suggestion = s
	return e
}

// WithExample adds an example to the error.
func (e *PeerwireError) WithExample(ex string) *PeerwireError {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *PeerwireError) WithDetail(d string) *PeerwireError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *PeerwireError) Wrap(err error) *PeerwireError {
	e.Wrapped = err
	return e
}

// New creates a PeerwireError from a registered error code.
func New(code string) *PeerwireError {
	template, ok := registry[code]
	if !ok {
		return &PeerwireError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &PeerwireError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
		Example:    template.Example,
	}
}

// Newf creates a new PeerwireError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *PeerwireError {
	return &PeerwireError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a PeerwireError. Errors that already
// are PeerwireErrors are returned unchanged.
func FromError(err error, code string) *PeerwireError {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*PeerwireError); ok {
		return pe
	}
	return New(code).Wrap(err)
}
