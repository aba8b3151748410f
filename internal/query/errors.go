package query

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes query errors.
type ErrorCode string

const (
	// CodeMalformedPattern indicates a textContains operand that is not a
	// valid regular expression. The whole query fails.
	CodeMalformedPattern ErrorCode = "MALFORMED_PATTERN"

	// CodeInvalidWindow indicates a negative offset, a non-positive limit, or
	// a limit above the configured maximum.
	CodeInvalidWindow ErrorCode = "INVALID_PAGINATION_WINDOW"

	// CodeUnknownOperator indicates an operator name outside the grammar.
	CodeUnknownOperator ErrorCode = "UNKNOWN_OPERATOR"

	// CodeMalformedQuery indicates request JSON that does not fit the grammar.
	CodeMalformedQuery ErrorCode = "MALFORMED_QUERY"

	// CodeTypeMismatch and CodeUnknownField only appear in lint warnings.
	// At evaluation time a mismatched operator is a non-match and an unknown
	// field resolves to absent.
	CodeTypeMismatch ErrorCode = "OPERATOR_TYPE_MISMATCH"
	CodeUnknownField ErrorCode = "UNKNOWN_FIELD"

	// CodeUnknownChoice is a lint warning for a value outside a declared
	// choice set.
	CodeUnknownChoice ErrorCode = "UNKNOWN_CHOICE"
)

// Error is a query-level failure.
type Error struct {
	Code     ErrorCode
	Message  string
	Field    string
	Operator Operator
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Operator != "":
		return fmt.Sprintf("%s: %s (field=%s, operator=%s)", e.Code, e.Message, e.Field, e.Operator)
	case e.Field != "":
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Code, true
	}
	return "", false
}

func hasCode(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// IsMalformedPattern reports whether err is a MALFORMED_PATTERN error.
func IsMalformedPattern(err error) bool { return hasCode(err, CodeMalformedPattern) }

// IsInvalidWindow reports whether err is an INVALID_PAGINATION_WINDOW error.
func IsInvalidWindow(err error) bool { return hasCode(err, CodeInvalidWindow) }

// IsUnknownOperator reports whether err is an UNKNOWN_OPERATOR error.
func IsUnknownOperator(err error) bool { return hasCode(err, CodeUnknownOperator) }

// IsMalformedQuery reports whether err is a MALFORMED_QUERY error.
func IsMalformedQuery(err error) bool { return hasCode(err, CodeMalformedQuery) }

// NewPatternError wraps a regular expression compile failure.
func NewPatternError(field string, pattern string, cause error) *Error {
	return &Error{
		Code:     CodeMalformedPattern,
		Message:  fmt.Sprintf("invalid pattern %q", pattern),
		Field:    field,
		Operator: OpTextContains,
		Cause:    cause,
	}
}

// NewWindowError reports an unusable pagination window.
func NewWindowError(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidWindow, Message: fmt.Sprintf(format, args...)}
}

func malformed(field, format string, args ...any) *Error {
	return &Error{Code: CodeMalformedQuery, Message: fmt.Sprintf(format, args...), Field: field}
}
