package node

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by tree operations
var (
	ErrAllocation      = errors.New("allocator returned no memory")
	ErrAttached        = errors.New("value is already attached to a container")
	ErrNotArray        = errors.New("value is not an array")
	ErrNotObject       = errors.New("value is not an object")
	ErrReference       = errors.New("reference containers cannot be modified through the alias")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNotFound        = errors.New("member not found")
	ErrReleased        = errors.New("value has been released")
	ErrCycle           = errors.New("value cannot be attached beneath itself")
	ErrInvalidKind     = errors.New("invalid value kind")
	ErrNilValue        = errors.New("nil value")
	ErrHooksFrozen     = errors.New("allocator hooks can only be set once, before first use")
	ErrBufferTooSmall  = errors.New("buffer too small for rendered output")
	ErrNestingTooDeep  = errors.New("nesting too deep")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeAllocation       ErrorType = "allocation"
	ErrorTypeInvalidOperation ErrorType = "invalid_operation"
	ErrorTypeParse            ErrorType = "parse"
	ErrorTypeBufferTooSmall   ErrorType = "buffer_too_small"
	ErrorTypeUnknown          ErrorType = "unknown"
)

// Error is returned by tree operations. Op names the failing operation.
type Error struct {
	Type ErrorType
	Op   string
	Err  error
}

// Error implements error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Type, e.Op, e.Err)
}

// Unwrap returns wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same type.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

func allocError(op string) *Error {
	return &Error{Type: ErrorTypeAllocation, Op: op, Err: ErrAllocation}
}

func opError(op string, err error) *Error {
	return &Error{Type: ErrorTypeInvalidOperation, Op: op, Err: err}
}

// Reason identifies why parsing failed.
type Reason int

const (
	ReasonUnexpectedToken Reason = iota + 1
	ReasonUnterminatedString
	ReasonInvalidEscape
	ReasonInvalidNumber
	ReasonUnexpectedEnd
	ReasonTrailingData
	ReasonNestingTooDeep
	ReasonControlCharacter
)

// Parse failure sentinels, one per Reason.
var (
	ErrUnexpectedToken    = errors.New("unexpected token")
	ErrUnterminatedString = errors.New("unterminated string")
	ErrInvalidEscape      = errors.New("invalid escape sequence")
	ErrInvalidNumber      = errors.New("invalid number")
	ErrUnexpectedEnd      = errors.New("unexpected end of input")
	ErrTrailingData       = errors.New("trailing data after value")
	ErrControlCharacter   = errors.New("control character in string")
)

func (r Reason) sentinel() error {
	switch r {
	case ReasonUnexpectedToken:
		return ErrUnexpectedToken
	case ReasonUnterminatedString:
		return ErrUnterminatedString
	case ReasonInvalidEscape:
		return ErrInvalidEscape
	case ReasonInvalidNumber:
		return ErrInvalidNumber
	case ReasonUnexpectedEnd:
		return ErrUnexpectedEnd
	case ReasonTrailingData:
		return ErrTrailingData
	case ReasonNestingTooDeep:
		return ErrNestingTooDeep
	case ReasonControlCharacter:
		return ErrControlCharacter
	}
	return ErrUnexpectedToken
}

func (r Reason) String() string {
	return r.sentinel().Error()
}

// ParseError reports malformed input. Offset is the byte position, relative
// to the start of the input, where parsing stopped.
type ParseError struct {
	Offset int
	Reason Reason
	// Err is set when the failure came from the allocator rather than the text.
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Reason)
}

// Unwrap exposes the reason sentinel so callers can use errors.Is.
func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Reason.sentinel()
}

// TypeOf classifies an error returned by this package.
func TypeOf(err error) ErrorType {
	var pe *ParseError
	if errors.As(err, &pe) {
		if errors.Is(pe.Err, ErrAllocation) {
			return ErrorTypeAllocation
		}
		return ErrorTypeParse
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	switch {
	case errors.Is(err, ErrAllocation):
		return ErrorTypeAllocation
	case errors.Is(err, ErrBufferTooSmall):
		return ErrorTypeBufferTooSmall
	}
	return ErrorTypeUnknown
}
