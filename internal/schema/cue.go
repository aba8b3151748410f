package schema

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// CompileError is a schema error with its CUE source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var definitionFields = map[string]struct{}{
	"name": {}, "type": {}, "choices": {}, "required": {}, "group": {}, "description": {},
}

// Compile extracts a Schema from a CUE value holding an "attribute" struct.
// Attributes keep their declaration order.
func Compile(v cue.Value) (*Schema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(); err != nil {
		return nil, formatCUEError(err)
	}

	attrsVal := v.LookupPath(cue.ParsePath("attribute"))
	if !attrsVal.Exists() {
		return nil, &CompileError{
			Field:   "attribute",
			Message: "no attribute definitions found",
			Pos:     v.Pos(),
		}
	}

	iter, err := attrsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var defs []Definition
	for iter.Next() {
		def, err := compileDefinition(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	s, err := New(defs)
	if err != nil {
		return nil, &CompileError{Field: "attribute", Message: err.Error(), Pos: attrsVal.Pos()}
	}
	return s, nil
}

// CompileString compiles CUE source text. filename is used in positions.
func CompileString(src, filename string) (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	return Compile(v)
}

// LoadDir loads every .cue file of the package in dir and compiles the
// result.
func LoadDir(dir string) (*Schema, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("schema directory: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("schema directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("schema directory: not a directory: %s", dir)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	ctx := cuecontext.New()
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return Compile(value)
}

func compileDefinition(key string, v cue.Value) (Definition, error) {
	def := Definition{Key: key}
	field := func(name string) string { return "attribute." + key + "." + name }

	fields, err := v.Fields()
	if err != nil {
		return def, formatCUEError(err)
	}
	for fields.Next() {
		if _, ok := definitionFields[fields.Label()]; !ok {
			return def, &CompileError{
				Field:   field(fields.Label()),
				Message: "unknown field",
				Pos:     fields.Value().Pos(),
			}
		}
	}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !isSet(typeVal) {
		return def, &CompileError{Field: field("type"), Message: "type is required", Pos: v.Pos()}
	}
	typeName, err := typeVal.String()
	if err != nil {
		return def, formatCUEError(err)
	}
	def.Type = FieldType(typeName)
	if !def.Type.Valid() {
		return def, &CompileError{
			Field:   field("type"),
			Message: fmt.Sprintf("unknown type %q", typeName),
			Pos:     typeVal.Pos(),
		}
	}

	if def.Name, err = optionalString(v, "name"); err != nil {
		return def, err
	}
	if def.Group, err = optionalString(v, "group"); err != nil {
		return def, err
	}
	if def.Description, err = optionalString(v, "description"); err != nil {
		return def, err
	}

	if reqVal := v.LookupPath(cue.ParsePath("required")); isSet(reqVal) {
		if def.Required, err = reqVal.Bool(); err != nil {
			return def, formatCUEError(err)
		}
	}

	if choicesVal := v.LookupPath(cue.ParsePath("choices")); isSet(choicesVal) {
		list, err := choicesVal.List()
		if err != nil {
			return def, formatCUEError(err)
		}
		for list.Next() {
			choice, err := list.Value().String()
			if err != nil {
				return def, formatCUEError(err)
			}
			def.Choices = append(def.Choices, choice)
		}
	}

	return def, nil
}

func isSet(v cue.Value) bool {
	return v.Exists() && v.IsConcrete()
}

func optionalString(v cue.Value, name string) (string, error) {
	sv := v.LookupPath(cue.ParsePath(name))
	if !isSet(sv) {
		return "", nil
	}
	s, err := sv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
