package query

import (
	"fmt"
	"slices"

	"github.com/roach88/skuquery/internal/attr"
	"github.com/roach88/skuquery/internal/catalog"
	"github.com/roach88/skuquery/internal/schema"
)

// Warning is one lint finding. Warnings never stop evaluation.
type Warning struct {
	Code     ErrorCode `json:"code"`
	Field    string    `json:"field"`
	Operator Operator  `json:"operator,omitempty"`
	Message  string    `json:"message"`
}

func (w Warning) String() string {
	if w.Operator != "" {
		return fmt.Sprintf("%s: %s.%s: %s", w.Code, w.Field, w.Operator, w.Message)
	}
	return fmt.Sprintf("%s: %s: %s", w.Code, w.Field, w.Message)
}

// LintResult lists the conditions that will silently never match, or that
// reference keys the schema does not declare.
type LintResult struct {
	// Clean is true when there are no warnings.
	Clean bool

	// Warnings are ordered by field path, then operator.
	Warnings []Warning
}

// Lint checks q against the attribute schema. It reports unknown field
// paths, operands of the wrong shape for their operator, ordering or text
// operators on attributes declared with an incompatible type, and equality
// values outside a declared choice set.
//
// A nil schema skips the declared-type checks but still checks operand
// shapes. Lint is pure.
func Lint(q Query, s *schema.Schema) LintResult {
	l := &linter{schema: s, warnings: []Warning{}}

	for _, field := range q.Filter.Fields() {
		def, known := l.field(field)
		for _, op := range q.Filter[field].Operators() {
			l.lintOperator(field, op, q.Filter[field][op], def, known)
		}
	}
	if q.Sort != nil {
		l.field(q.Sort.Field)
	}
	for _, col := range q.HiddenColumns {
		l.field(col)
	}

	return LintResult{Clean: len(l.warnings) == 0, Warnings: l.warnings}
}

type linter struct {
	schema   *schema.Schema
	warnings []Warning
	seen     []string
}

func (l *linter) add(code ErrorCode, field string, op Operator, format string, args ...any) {
	l.warnings = append(l.warnings, Warning{
		Code:     code,
		Field:    field,
		Operator: op,
		Message:  fmt.Sprintf(format, args...),
	})
}

// field resolves a path against the schema and warns once per unknown path.
func (l *linter) field(path string) (schema.Definition, bool) {
	key, reserved := catalog.SplitPath(path)
	if reserved {
		return reservedDefinition(key), true
	}
	if l.schema == nil {
		return schema.Definition{}, false
	}
	def, ok := l.schema.Lookup(key)
	if !ok && !slices.Contains(l.seen, path) {
		l.seen = append(l.seen, path)
		l.add(CodeUnknownField, path, "", "attribute %q is not declared; it resolves to absent", key)
	}
	return def, ok
}

func reservedDefinition(key string) schema.Definition {
	switch key {
	case catalog.FieldCreatedAt, catalog.FieldUpdatedAt:
		return schema.Definition{Key: key, Type: schema.TypeNumber}
	default:
		return schema.Definition{Key: key, Type: schema.TypeText}
	}
}

func (l *linter) lintOperator(field string, op Operator, operand attr.Value, def schema.Definition, known bool) {
	kind := attr.KindOf(operand)

	switch {
	case op.IsOrdering():
		if kind != attr.KindNumber {
			l.add(CodeTypeMismatch, field, op, "operand must be a number, got %s", kind)
		}
		if known && !def.Type.IsNumeric() {
			l.add(CodeTypeMismatch, field, op, "%s values are not numbers; ordering never matches", def.Type)
		}
	case op == OpIn:
		if kind != attr.KindList {
			l.add(CodeTypeMismatch, field, op, "operand must be a list, got %s", kind)
		}
	case op == OpExists:
		if kind != attr.KindBool {
			l.add(CodeTypeMismatch, field, op, "operand must be a boolean, got %s", kind)
		}
	case op == OpTextContains:
		if kind != attr.KindText {
			l.add(CodeTypeMismatch, field, op, "operand must be a pattern string, got %s", kind)
		}
		if known && !def.Type.IsTextual() {
			l.add(CodeTypeMismatch, field, op, "%s values are not text; pattern never matches", def.Type)
		}
	case op == OpEquals || op == OpNotEquals:
		if known && len(def.Choices) > 0 && kind == attr.KindText && !slices.Contains(def.Choices, string(operand.(attr.Text))) {
			l.add(CodeUnknownChoice, field, op, "%q is not one of the declared choices", string(operand.(attr.Text)))
		}
	}
}
