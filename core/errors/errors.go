package errors

import (
	"errors"
	"fmt"
)

// Error codes for the failure categories surfaced during compilation.
// Every code is fatal: compilation stops at the point of detection.
const (
	// No matcher rule matched the remaining source text.
	ErrSchemaParsing = "SCHEMA_PARSING_ERROR"

	// An identifier in datatype position is not in the type registry.
	ErrUnknownDataType = "UNKNOWN_DATATYPE_ERROR"

	// A computed output column name collides with a registered one.
	ErrDuplicateColumn = "DUPLICATE_COLUMN_ERROR"

	// A list/array/struct field carries a rename; only leaves may.
	ErrPathRenaming = "PATH_RENAMING_ERROR"
)

// UnpackError is a structured compilation error carrying its code and the
// caret-underlined diagnostic rendered from the offending source span.
type UnpackError struct {
	Code       string
	Message    string
	Diagnostic string
	Cause      error
}

// Error implements the error interface.
func (e *UnpackError) Error() string {
	if e.Diagnostic != "" {
		return fmt.Sprintf("%s: %s\n%s", e.Code, e.Message, e.Diagnostic)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap allows error unwrapping.
func (e *UnpackError) Unwrap() error {
	return e.Cause
}

// New creates an UnpackError with a code and message.
func New(code, message string) *UnpackError {
	return &UnpackError{Code: code, Message: message}
}

// WithDiagnostic attaches a rendered source excerpt to the error.
func (e *UnpackError) WithDiagnostic(diagnostic string) *UnpackError {
	e.Diagnostic = diagnostic
	return e
}

// Wrap creates an UnpackError wrapping an underlying cause.
func Wrap(code, message string, cause error) *UnpackError {
	return &UnpackError{Code: code, Message: message, Cause: cause}
}

// IsCode checks whether err is, or wraps, an UnpackError with the
// given code.
func IsCode(err error, code string) bool {
	var e *UnpackError
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// NewSchemaParsingError reports unparseable source content.
func NewSchemaParsingError(diagnostic string) *UnpackError {
	return New(ErrSchemaParsing, "unexpected content encountered").WithDiagnostic(diagnostic)
}

// NewUnknownDataTypeError reports an unsupported datatype name.
func NewUnknownDataTypeError(name, diagnostic string) *UnpackError {
	return New(ErrUnknownDataType, fmt.Sprintf("unknown datatype %q", name)).WithDiagnostic(diagnostic)
}

// NewDuplicateColumnError reports an output column declared twice.
func NewDuplicateColumnError(column, diagnostic string) *UnpackError {
	return New(ErrDuplicateColumn, fmt.Sprintf("column %q encountered more than once", column)).WithDiagnostic(diagnostic)
}

// NewPathRenamingError reports a rename attempted on a nesting field.
func NewPathRenamingError(renamedTo, diagnostic string) *UnpackError {
	return New(ErrPathRenaming, fmt.Sprintf("cannot rename nested field to %q", renamedTo)).WithDiagnostic(diagnostic)
}
