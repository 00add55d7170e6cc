package errors

import (
	stderrors "errors"
	"fmt"
)

// MediatorError is implemented by every error the generator tooling reports
type MediatorError interface {
	error
	ErrorCode() ErrorCode
	Location() SourceLocation
	Context() map[string]interface{}
	Suggestions() []string
	Unwrap() error
}

// ErrorCode classifies a MediatorError
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota
	SyntaxErrorCode
	GenerationErrorCode
	FileSystemErrorCode
	ConfigurationErrorCode
	ModuleErrorCode
	StaleOutputErrorCode
)

var codeNames = map[ErrorCode]string{
	SyntaxErrorCode:        "SyntaxError",
	GenerationErrorCode:    "GenerationError",
	FileSystemErrorCode:    "FileSystemError",
	ConfigurationErrorCode: "ConfigurationError",
	ModuleErrorCode:        "ModuleError",
	StaleOutputErrorCode:   "StaleOutputError",
}

func (e ErrorCode) String() string {
	if name, ok := codeNames[e]; ok {
		return name
	}
	return "UnknownError"
}

// SourceLocation points at a file, optionally narrowed to a line and column
type SourceLocation struct {
	File   string
	Line   int // 1-based, 0 when unknown
	Column int // 1-based, 0 when unknown
}

func (s SourceLocation) String() string {
	switch {
	case s.File == "":
		return "unknown location"
	case s.Line == 0:
		return s.File
	case s.Column == 0:
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	}
}

// BaseError is the MediatorError implementation used across the tooling.
// The With* methods modify the receiver and return it for chaining.
type BaseError struct {
	Code    ErrorCode
	Message string
	Loc     SourceLocation
	Cause   error
	Fields  map[string]interface{}
	Hints   []string
}

func (e *BaseError) Error() string {
	msg := e.Message
	if e.Loc.File != "" {
		msg = e.Loc.String() + ": " + msg
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *BaseError) ErrorCode() ErrorCode     { return e.Code }
func (e *BaseError) Location() SourceLocation { return e.Loc }
func (e *BaseError) Suggestions() []string    { return e.Hints }
func (e *BaseError) Unwrap() error            { return e.Cause }

// Context returns the key/value pairs attached with WithContext. It never
// returns nil.
func (e *BaseError) Context() map[string]interface{} {
	if e.Fields == nil {
		return map[string]interface{}{}
	}
	return e.Fields
}

func (e *BaseError) WithLocation(loc SourceLocation) *BaseError {
	e.Loc = loc
	return e
}

func (e *BaseError) WithCause(cause error) *BaseError {
	e.Cause = cause
	return e
}

func (e *BaseError) WithContext(key string, value interface{}) *BaseError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

func (e *BaseError) WithSuggestions(suggestions ...string) *BaseError {
	e.Hints = append(e.Hints, suggestions...)
	return e
}

// New creates a BaseError with the given code and message
func New(code ErrorCode, message string) *BaseError {
	return &BaseError{Code: code, Message: message}
}

// Wrap creates a BaseError caused by cause
func Wrap(code ErrorCode, message string, cause error) *BaseError {
	return New(code, message).WithCause(cause)
}

// CodeOf returns the code of the first MediatorError in err's chain
func CodeOf(err error) ErrorCode {
	var merr MediatorError
	if stderrors.As(err, &merr) {
		return merr.ErrorCode()
	}
	return UnknownErrorCode
}

// SuggestionsOf returns the suggestions of the first MediatorError in err's
// chain
func SuggestionsOf(err error) []string {
	var merr MediatorError
	if stderrors.As(err, &merr) {
		return merr.Suggestions()
	}
	return nil
}
