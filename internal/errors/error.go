package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryWatch    Category = "watch"
	CategoryBuild    Category = "build"
	CategoryCache    Category = "cache"
	CategoryReload   Category = "reload"
	CategoryProtocol Category = "protocol"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
)

// PlhubError is a structured error with a stable code, a suggestion, and a
// documentation link.
type PlhubError struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	// Category is the error type (watch, build, cache, ...).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *PlhubError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s", msg, e.Wrapped)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *PlhubError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *PlhubError) WithSuggestion(s string) *PlhubError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *PlhubError) WithDetail(d string) *PlhubError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *PlhubError) Wrap(err error) *PlhubError {
	e.Wrapped = err
	return e
}

// New creates a PlhubError from a registered error code.
func New(code string) *PlhubError {
	template, ok := registry[code]
	if !ok {
		return &PlhubError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &PlhubError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
		DocURL:     template.DocURL,
	}
}

// Newf creates a new PlhubError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *PlhubError {
	return &PlhubError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a PlhubError.
func FromError(err error, code string) *PlhubError {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*PlhubError); ok {
		return pe
	}
	return New(code).Wrap(err)
}
