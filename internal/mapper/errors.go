package mapper

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes binding and dispatch errors.
type ErrorCode string

const (
	// ErrCodeUnboundOperation indicates no statement matches the method.
	ErrCodeUnboundOperation ErrorCode = "UNBOUND_OPERATION"

	// ErrCodeUnsupportedOperationKind indicates the statement kind is unknown.
	ErrCodeUnsupportedOperationKind ErrorCode = "UNSUPPORTED_OPERATION_KIND"

	// ErrCodeDuplicateSpecialParameter indicates more than one paging,
	// row handler or context parameter.
	ErrCodeDuplicateSpecialParameter ErrorCode = "DUPLICATE_SPECIAL_PARAMETER"

	// ErrCodeMissingResultMapping indicates a row handler read on a
	// statement without a result type.
	ErrCodeMissingResultMapping ErrorCode = "MISSING_RESULT_MAPPING"

	// ErrCodeMissingPagingArgument indicates a page result without a
	// page.Request argument.
	ErrCodeMissingPagingArgument ErrorCode = "MISSING_PAGING_ARGUMENT"

	// ErrCodeUnsupportedMutationReturnType indicates an insert, update or
	// delete method whose result is not a row count type.
	ErrCodeUnsupportedMutationReturnType ErrorCode = "UNSUPPORTED_MUTATION_RETURN_TYPE"

	// ErrCodeNullPrimitiveReturn indicates a nil result for a
	// non-nullable declared type.
	ErrCodeNullPrimitiveReturn ErrorCode = "NULL_PRIMITIVE_RETURN"

	// ErrCodeUnknownParameterKey indicates a parameter lookup by a name
	// that was never populated.
	ErrCodeUnknownParameterKey ErrorCode = "UNKNOWN_PARAMETER_KEY"

	// ErrCodeInvalidMethod indicates a func field that cannot be a mapper method.
	ErrCodeInvalidMethod ErrorCode = "INVALID_METHOD"

	// ErrCodeInvalidMapper indicates a Bind target that is not a pointer to a struct.
	ErrCodeInvalidMapper ErrorCode = "INVALID_MAPPER"

	// ErrCodeUnsupportedFutureShape indicates a future around a result
	// shape that only exists synchronously.
	ErrCodeUnsupportedFutureShape ErrorCode = "UNSUPPORTED_FUTURE_SHAPE"

	// ErrCodeResultTypeMismatch indicates an engine value that cannot be
	// coerced to the declared type.
	ErrCodeResultTypeMismatch ErrorCode = "RESULT_TYPE_MISMATCH"
)

// BindingError is returned when a method cannot be bound or a call cannot
// be dispatched. None of these errors are retried.
type BindingError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Statement is the statement id, when one was resolved.
	Statement string

	// Method is "<mapper>.<method>".
	Method string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *BindingError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	switch {
	case e.Method != "" && e.Statement != "":
		msg = fmt.Sprintf("%s (method=%s, statement=%s)", msg, e.Method, e.Statement)
	case e.Method != "":
		msg = fmt.Sprintf("%s (method=%s)", msg, e.Method)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *BindingError) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is a BindingError with the given code.
// Uses errors.As to handle wrapped errors.
func IsCode(err error, code ErrorCode) bool {
	var be *BindingError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// CodeOf returns the code of the first BindingError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var be *BindingError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func newError(code ErrorCode, format string, args ...any) *BindingError {
	return &BindingError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *BindingError) withMethod(m Method) *BindingError {
	e.Method = m.FullName()
	return e
}

func (e *BindingError) withStatement(id string) *BindingError {
	e.Statement = id
	return e
}

func (e *BindingError) wrapping(err error) *BindingError {
	e.Err = err
	return e
}
