package query

import (
	"errors"
	"fmt"
	"regexp"
	"regexp/syntax"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormat(t *testing.T) {
	e := &Error{Code: CodeUnknownOperator, Message: `unknown operator "$like"`, Field: "name", Operator: "$like"}
	assert.Equal(t, `UNKNOWN_OPERATOR: unknown operator "$like" (field=name, operator=$like)`, e.Error())

	e = &Error{Code: CodeMalformedQuery, Message: "bad", Field: "sort.field"}
	assert.Equal(t, "MALFORMED_QUERY: bad (field=sort.field)", e.Error())

	e = NewWindowError("limit must be > 0, got %d", 0)
	assert.Equal(t, "INVALID_PAGINATION_WINDOW: limit must be > 0, got 0", e.Error())
}

func TestErrorHelpersUnwrap(t *testing.T) {
	_, cause := regexp.Compile("(")
	require.Error(t, cause)

	err := fmt.Errorf("evaluate: %w", NewPatternError("name", "(", cause))
	assert.True(t, IsMalformedPattern(err))
	assert.False(t, IsInvalidWindow(err))
	assert.False(t, IsUnknownOperator(err))
	assert.False(t, IsMalformedQuery(err))

	var syntaxErr *syntax.Error
	assert.True(t, errors.As(err, &syntaxErr), "cause reachable through Unwrap")

	code, ok := CodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, CodeMalformedPattern, code)

	_, ok = CodeOf(errors.New("plain"))
	assert.False(t, ok)
}
