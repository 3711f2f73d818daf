package smartjson

import (
	"errors"
	"fmt"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeSerialization      = "serialization"
	CodeCircularDependency = "circular_dependency"
	CodeDeserialization    = "deserialization"
	CodeSchemaValidation   = "schema_validation"
	CodeUnsupportedType    = "unsupported_type"
	CodeInvalidSchema      = "invalid_schema"
)

// Sentinels for errors.Is. A *Error matches the sentinel of its Code; a
// circular dependency error also matches ErrSerialization.
var (
	ErrSerialization      = &Error{Code: CodeSerialization, Message: "serialization failed"}
	ErrCircularDependency = &Error{Code: CodeCircularDependency, Message: "circular dependency detected"}
	ErrDeserialization    = &Error{Code: CodeDeserialization, Message: "deserialization failed"}
	ErrSchemaValidation   = &Error{Code: CodeSchemaValidation, Message: "schema validation failed"}
	ErrUnsupportedType    = &Error{Code: CodeUnsupportedType, Message: "unsupported type"}
	ErrInvalidSchema      = &Error{Code: CodeInvalidSchema, Message: "invalid schema definition"}
)

// Error is the single error type returned by the codec.
type Error struct {
	Code    string // One of the codes listed above.
	Message string
	Path    string // Dotted/indexed location (for example: items[2].price).
	// TypeName is the runtime type involved, when known.
	TypeName string
	// ObjectID is the address of the revisited object for circular
	// dependency errors (0 otherwise).
	ObjectID uintptr
	Cause    error // Optional: underlying error.
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (caused by: %T - %v)", e.Message, e.Cause, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is the sentinel for e's code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code == e.Code {
		return true
	}
	return e.Code == CodeCircularDependency && t.Code == CodeSerialization
}

// AsError extracts a *Error from an error using errors.As internally.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// isTaxonomy reports whether err already carries one of the codec's codes and
// must therefore propagate unchanged.
func isTaxonomy(err error) bool {
	_, ok := AsError(err)
	return ok
}

func newError(code, path, format string, args ...any) *Error {
	return &Error{Code: code, Path: path, Message: fmt.Sprintf(format, args...)}
}

func wrapError(code string, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func schemaViolation(path, format string, args ...any) *Error {
	return newError(CodeSchemaValidation, path, format, args...)
}

func invalidSchema(path, format string, args ...any) *Error {
	return newError(CodeInvalidSchema, path, format, args...)
}
