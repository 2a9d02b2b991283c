package errors

import (
	"errors"
	"fmt"

	"github.com/mcncl/jsontree/node"
	"github.com/mcncl/jsontree/pointer"
)

// Standard application errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileEmpty       = errors.New("file is empty")
	ErrNoInput         = errors.New("no input provided: please specify a file with -i or pipe JSON data to stdin")
	ErrInvalidFilePath = errors.New("invalid file path")
	ErrUnknownCase     = errors.New("unknown key case")
	ErrInvalidSize     = errors.New("invalid size")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput     ErrorType = "input"
	ErrorTypeParsing   ErrorType = "parsing"
	ErrorTypeTransform ErrorType = "transform"
	ErrorTypeOutput    ErrorType = "output"
	ErrorTypeConfig    ErrorType = "config"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to reading input
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewParsingError creates a new error related to JSON parsing
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewTransformError creates a new error related to tree rewriting, merge
// patches and pointer lookups
func NewTransformError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeTransform,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to rendering or writing output
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// NewConfigError creates a new error related to configuration
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		detail := libraryDetail(appErr.Err)
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s%s", appErr.Message, detail)
		case ErrorTypeParsing:
			return fmt.Sprintf("JSON parsing error: %s%s", appErr.Message, detail)
		case ErrorTypeTransform:
			return fmt.Sprintf("Transform error: %s%s", appErr.Message, detail)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s%s", appErr.Message, detail)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s%s", appErr.Message, detail)
		default:
			return fmt.Sprintf("Error: %s%s", appErr.Message, detail)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide valid JSON data."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with valid JSON content."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe JSON data to stdin."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v%s", err, libraryDetail(err))
}

// libraryDetail explains errors coming from the tree library. The result
// starts with " (" or is empty.
func libraryDetail(err error) string {
	if err == nil {
		return ""
	}
	var pe *node.ParseError
	if errors.As(err, &pe) {
		if pe.Err != nil {
			return fmt.Sprintf(" (memory limit reached at byte %d)", pe.Offset)
		}
		return fmt.Sprintf(" (%s at byte %d)", pe.Reason, pe.Offset)
	}
	switch node.TypeOf(err) {
	case node.ErrorTypeAllocation:
		return " (memory limit reached; raise limits.max_memory)"
	case node.ErrorTypeBufferTooSmall:
		return " (output does not fit the fixed buffer; raise --fixed-buffer)"
	}
	switch {
	case errors.Is(err, pointer.ErrSyntax):
		return " (malformed JSON pointer)"
	case errors.Is(err, pointer.ErrNotFound):
		return " (no value at that JSON pointer)"
	case errors.Is(err, ErrUnknownCase):
		return " (use snake, camel, lower-camel, kebab or screaming-snake)"
	}
	return ""
}
