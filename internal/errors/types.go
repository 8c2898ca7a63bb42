package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// DefnError defines the base interface for all errors reported by defn
type DefnError interface {
	error
	ErrorCode() ErrorCode
	Location() SourceLocation
	Context() map[string]interface{}
	Suggestions() []string
	Unwrap() error
}

// ErrorCode represents the kind of error that occurred
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota

	// Synthesis errors
	NotCallableErrorCode
	AmbiguousOverloadErrorCode
	MissingReceiverParameterErrorCode
	MultipleReceiverCandidatesErrorCode
	TemplateShapeErrorCode

	// Front end and decorator errors
	SyntaxErrorCode
	UnknownDecoratorErrorCode
	UnknownClosureErrorCode
	DecoratorTargetErrorCode
	DuplicateDeclarationErrorCode

	// Generation errors
	PolicyViolationErrorCode
	GenerationErrorCode
	TemplateErrorCode
	FileSystemErrorCode
	ConfigurationErrorCode
)

// String returns the diagnostic name of the error code
func (e ErrorCode) String() string {
	switch e {
	case NotCallableErrorCode:
		return "NotCallableError"
	case AmbiguousOverloadErrorCode:
		return "AmbiguousOverloadError"
	case MissingReceiverParameterErrorCode:
		return "MissingReceiverParameterError"
	case MultipleReceiverCandidatesErrorCode:
		return "MultipleReceiverCandidatesError"
	case TemplateShapeErrorCode:
		return "TemplateShapeError"
	case SyntaxErrorCode:
		return "SyntaxError"
	case UnknownDecoratorErrorCode:
		return "UnknownDecoratorError"
	case UnknownClosureErrorCode:
		return "UnknownClosureError"
	case DecoratorTargetErrorCode:
		return "DecoratorTargetError"
	case DuplicateDeclarationErrorCode:
		return "DuplicateDeclarationError"
	case PolicyViolationErrorCode:
		return "PolicyViolationError"
	case GenerationErrorCode:
		return "GenerationError"
	case TemplateErrorCode:
		return "TemplateError"
	case FileSystemErrorCode:
		return "FileSystemError"
	case ConfigurationErrorCode:
		return "ConfigurationError"
	default:
		return "UnknownError"
	}
}

// SourceLocation represents where a declaration was written
type SourceLocation struct {
	File   string // file path
	Line   int    // line number (1-based)
	Column int    // column number (1-based)
}

// String returns a formatted string representation of the location
func (s SourceLocation) String() string {
	if s.File == "" {
		if s.Line == 0 {
			return "unknown location"
		}
		return fmt.Sprintf("%d:%d", s.Line, s.Column)
	}
	if s.Line == 0 {
		return s.File
	}
	if s.Column == 0 {
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// IsEmpty returns true if the location has no useful information
func (s SourceLocation) IsEmpty() bool {
	return s.File == "" && s.Line == 0
}

// BaseError provides a common implementation of the DefnError interface
type BaseError struct {
	Code        ErrorCode              // kind of error
	Message     string                 // error message
	Loc         SourceLocation         // where the error occurred
	Cause       error                  // underlying error cause
	ContextData map[string]interface{} // additional context information
	Hints       []string               // suggestions for fixing the error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Loc.IsEmpty() {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Loc.String(), e.Code, e.Message)
}

// ErrorCode returns the error code
func (e *BaseError) ErrorCode() ErrorCode {
	return e.Code
}

// Location returns the source location where the error occurred
func (e *BaseError) Location() SourceLocation {
	return e.Loc
}

// Context returns the error context data
func (e *BaseError) Context() map[string]interface{} {
	if e.ContextData == nil {
		return make(map[string]interface{})
	}
	return e.ContextData
}

// Suggestions returns suggestions for fixing the error
func (e *BaseError) Suggestions() []string {
	return e.Hints
}

// Unwrap returns the underlying error cause for error chain inspection
func (e *BaseError) Unwrap() error {
	return e.Cause
}

// WithLocation adds location information to the error
func (e *BaseError) WithLocation(loc SourceLocation) *BaseError {
	e.Loc = loc
	return e
}

// WithContext adds context data to the error
func (e *BaseError) WithContext(key string, value interface{}) *BaseError {
	if e.ContextData == nil {
		e.ContextData = make(map[string]interface{})
	}
	e.ContextData[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *BaseError) WithSuggestion(suggestion string) *BaseError {
	e.Hints = append(e.Hints, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions
func (e *BaseError) WithSuggestions(suggestions ...string) *BaseError {
	e.Hints = append(e.Hints, suggestions...)
	return e
}

// New creates a new BaseError with the specified code and message
func New(code ErrorCode, message string) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Hints:   make([]string, 0),
	}
}

// Newf creates a new BaseError with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *BaseError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new error that wraps another error
func Wrap(code ErrorCode, message string, cause error) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Hints:   make([]string, 0),
	}
}

// Wrapf creates a new error that wraps another error with formatted message
func Wrapf(code ErrorCode, cause error, format string, args ...interface{}) *BaseError {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// Find returns the first DefnError in the chain of err
func Find(err error) (DefnError, bool) {
	var defnErr DefnError
	if stderrors.As(err, &defnErr) {
		return defnErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first DefnError in the chain of err
func CodeOf(err error) ErrorCode {
	if defnErr, ok := Find(err); ok {
		return defnErr.ErrorCode()
	}
	return UnknownErrorCode
}

// HasCode reports whether err, or any error collected inside it, carries code
func HasCode(err error, code ErrorCode) bool {
	var multi *MultipleErrors
	if stderrors.As(err, &multi) {
		return multi.HasCode(code)
	}
	return CodeOf(err) == code
}

// Locate sets loc on the first DefnError in the chain of err when it has no location yet
func Locate(err error, loc SourceLocation) error {
	var based interface {
		Location() SourceLocation
		WithLocation(SourceLocation) *BaseError
	}
	if stderrors.As(err, &based) && based.Location().IsEmpty() {
		based.WithLocation(loc)
	}
	return err
}

// MultipleErrors represents multiple errors collected together
type MultipleErrors struct {
	Errors []DefnError
}

// Error implements the error interface
func (e *MultipleErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var messages []string
	for i, err := range e.Errors {
		messages = append(messages, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}

	return fmt.Sprintf("multiple errors (%d total):\n%s", len(e.Errors), strings.Join(messages, "\n"))
}

// ErrorCode returns the error code of the first error
func (e *MultipleErrors) ErrorCode() ErrorCode {
	if len(e.Errors) == 0 {
		return UnknownErrorCode
	}
	return e.Errors[0].ErrorCode()
}

// Location returns the location of the first error
func (e *MultipleErrors) Location() SourceLocation {
	if len(e.Errors) == 0 {
		return SourceLocation{}
	}
	return e.Errors[0].Location()
}

// Context returns combined context from all errors
func (e *MultipleErrors) Context() map[string]interface{} {
	combined := make(map[string]interface{})
	for i, err := range e.Errors {
		for k, v := range err.Context() {
			combined[fmt.Sprintf("error_%d_%s", i, k)] = v
		}
	}
	return combined
}

// Suggestions returns combined suggestions from all errors
func (e *MultipleErrors) Suggestions() []string {
	var suggestions []string
	for _, err := range e.Errors {
		suggestions = append(suggestions, err.Suggestions()...)
	}
	return suggestions
}

// Unwrap returns all collected errors for errors.Is and errors.As
func (e *MultipleErrors) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// Add adds an error to the collection
func (e *MultipleErrors) Add(err DefnError) {
	e.Errors = append(e.Errors, err)
}

// AddError adds err to the collection, wrapping plain errors as GenerationError
func (e *MultipleErrors) AddError(err error) {
	if err == nil {
		return
	}
	var multi *MultipleErrors
	if stderrors.As(err, &multi) {
		e.Errors = append(e.Errors, multi.Errors...)
		return
	}
	if defnErr, ok := Find(err); ok {
		e.Add(defnErr)
		return
	}
	e.Add(Wrap(GenerationErrorCode, err.Error(), err))
}

// IsEmpty returns true if there are no errors
func (e *MultipleErrors) IsEmpty() bool {
	return len(e.Errors) == 0
}

// HasCode returns true if any error of the specified kind exists
func (e *MultipleErrors) HasCode(code ErrorCode) bool {
	for _, err := range e.Errors {
		if err.ErrorCode() == code {
			return true
		}
	}
	return false
}

// ErrOrNil returns the collection as an error, or nil when it is empty
func (e *MultipleErrors) ErrOrNil() error {
	if e == nil || e.IsEmpty() {
		return nil
	}
	return e
}

// NewMultipleErrors creates a new MultipleErrors collection
func NewMultipleErrors() *MultipleErrors {
	return &MultipleErrors{
		Errors: make([]DefnError, 0),
	}
}
