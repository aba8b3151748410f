package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/roach88/skuquery/internal/catalog"
)

// JSONSchema renders the schema as a JSON Schema (draft 7) document over a
// record's attribute map. Unknown keys are allowed; every declared key also
// accepts null.
func (s *Schema) JSONSchema() ([]byte, error) {
	props := make(map[string]any, len(s.defs))
	for _, d := range s.defs {
		props[d.Key] = propertySchema(d)
	}
	doc := map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"properties":           props,
		"additionalProperties": true,
	}
	if req := s.Required(); len(req) > 0 {
		doc["required"] = req
	}
	return json.Marshal(doc)
}

func propertySchema(d Definition) map[string]any {
	var p map[string]any
	switch {
	case d.Type == TypeBoolean:
		p = map[string]any{"type": []string{"boolean", "null"}}
	case d.Type.IsNumeric():
		p = map[string]any{"type": []string{"number", "null"}}
	case d.Type.IsQuantity():
		p = map[string]any{
			"type": []string{"object", "null"},
			"properties": map[string]any{
				"value": map[string]any{"type": "number"},
				"unit":  map[string]any{"type": "string"},
			},
			"required": []string{"value"},
		}
	case d.Type.IsList():
		items := map[string]any{"type": "string"}
		if len(d.Choices) > 0 {
			items["enum"] = d.Choices
		}
		p = map[string]any{"type": []string{"array", "null"}, "items": items}
	default:
		p = map[string]any{"type": []string{"string", "null"}}
		if len(d.Choices) > 0 {
			enum := make([]any, 0, len(d.Choices)+1)
			for _, c := range d.Choices {
				enum = append(enum, c)
			}
			p["enum"] = append(enum, nil)
		}
	}
	if d.Description != "" {
		p["description"] = d.Description
	}
	return p
}

// ValidationError lists the problems found in one record.
type ValidationError struct {
	RecordID string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("record %s: %s", e.RecordID, strings.Join(e.Problems, "; "))
}

// Validator checks records against a compiled schema.
type Validator struct {
	compiled *gojsonschema.Schema
}

// NewValidator compiles s into a record validator.
func NewValidator(s *Schema) (*Validator, error) {
	doc, err := s.JSONSchema()
	if err != nil {
		return nil, fmt.Errorf("render json schema: %w", err)
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("invalid json schema: %w", err)
	}
	return &Validator{compiled: compiled}, nil
}

// Validate returns a *ValidationError when r does not conform.
func (v *Validator) Validate(r catalog.Record) error {
	result, err := v.compiled.Validate(gojsonschema.NewGoLoader(r.AttributeMap()))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return &ValidationError{RecordID: r.ID, Problems: problems}
}

// ValidateSnapshot validates every record and returns one error per
// non-conforming record, in snapshot order.
func (v *Validator) ValidateSnapshot(snap *catalog.Snapshot) []error {
	var errs []error
	for i := 0; i < snap.Len(); i++ {
		if err := v.Validate(snap.At(i)); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
