package schema

import (
	"fmt"
	"sort"
)

// FieldType is the declared semantic type of an attribute.
type FieldType string

const (
	TypeText         FieldType = "TEXT"
	TypeLongText     FieldType = "LONG_TEXT"
	TypeRichText     FieldType = "RICH_TEXT"
	TypeNumber       FieldType = "NUMBER"
	TypeBoolean      FieldType = "BOOLEAN"
	TypePrice        FieldType = "PRICE"
	TypeMeasure      FieldType = "MEASURE"
	TypeDate         FieldType = "DATE"
	TypeDateTime     FieldType = "DATETIME"
	TypeURL          FieldType = "URL"
	TypeDropdown     FieldType = "DROPDOWN"
	TypeMultiSelect  FieldType = "MULTI_SELECT"
	TypeMediaGallery FieldType = "MEDIA_GALLERY"
	TypeTreeNode     FieldType = "TREE_NODE"
)

var fieldTypes = map[FieldType]struct{}{
	TypeText: {}, TypeLongText: {}, TypeRichText: {}, TypeNumber: {},
	TypeBoolean: {}, TypePrice: {}, TypeMeasure: {}, TypeDate: {},
	TypeDateTime: {}, TypeURL: {}, TypeDropdown: {}, TypeMultiSelect: {},
	TypeMediaGallery: {}, TypeTreeNode: {},
}

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	_, ok := fieldTypes[t]
	return ok
}

// IsTextual reports whether values of this type are stored as text.
func (t FieldType) IsTextual() bool {
	switch t {
	case TypeText, TypeLongText, TypeRichText, TypeURL, TypeDate, TypeDateTime,
		TypeDropdown, TypeTreeNode:
		return true
	}
	return false
}

// IsNumeric reports whether values of this type are plain numbers.
func (t FieldType) IsNumeric() bool {
	return t == TypeNumber
}

// IsList reports whether values of this type are lists.
func (t FieldType) IsList() bool {
	return t == TypeMultiSelect || t == TypeMediaGallery
}

// IsQuantity reports whether values are {value, unit} objects.
func (t FieldType) IsQuantity() bool {
	return t == TypePrice || t == TypeMeasure
}

// Display groups used by the bundled catalogs. Any string is accepted.
const (
	GroupBasicInfo    = "Basic Info"
	GroupSpecs        = "Specifications"
	GroupSafety       = "Safety & Compliance"
	GroupDescriptions = "Descriptions"
	GroupMarketing    = "Marketing"
	GroupVariants     = "Variants"
	GroupPricing      = "Pricing & Inventory"
	GroupShipping     = "Shipping"
	GroupOther        = "Other"
)

// Definition describes one attribute key.
type Definition struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Choices     []string  `json:"choices,omitempty"`
	Required    bool      `json:"required,omitempty"`
	Group       string    `json:"group,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Group is a named set of attribute keys in declaration order.
type Group struct {
	Name string
	Keys []string
}

// Schema is an ordered set of attribute definitions with unique keys.
type Schema struct {
	defs  []Definition
	index map[string]int
}

// New builds a schema from definitions. Keys must be unique and non-empty,
// and types must be valid. An empty Name defaults to the key.
func New(defs []Definition) (*Schema, error) {
	s := &Schema{
		defs:  make([]Definition, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	for _, d := range defs {
		if d.Key == "" {
			return nil, fmt.Errorf("attribute key is required")
		}
		if _, dup := s.index[d.Key]; dup {
			return nil, fmt.Errorf("duplicate attribute key %q", d.Key)
		}
		if !d.Type.Valid() {
			return nil, fmt.Errorf("attribute %q: unknown type %q", d.Key, d.Type)
		}
		if d.Name == "" {
			d.Name = d.Key
		}
		s.index[d.Key] = len(s.defs)
		s.defs = append(s.defs, d)
	}
	return s, nil
}

// Lookup returns the definition for key.
func (s *Schema) Lookup(key string) (Definition, bool) {
	if s == nil {
		return Definition{}, false
	}
	i, ok := s.index[key]
	if !ok {
		return Definition{}, false
	}
	return s.defs[i], true
}

// Definitions returns a copy of the definitions in declaration order.
func (s *Schema) Definitions() []Definition {
	if s == nil {
		return nil
	}
	out := make([]Definition, len(s.defs))
	copy(out, s.defs)
	return out
}

// Keys returns the attribute keys in declaration order.
func (s *Schema) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, len(s.defs))
	for i, d := range s.defs {
		keys[i] = d.Key
	}
	return keys
}

// Required returns the keys of required attributes, sorted.
func (s *Schema) Required() []string {
	if s == nil {
		return nil
	}
	var keys []string
	for _, d := range s.defs {
		if d.Required {
			keys = append(keys, d.Key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Groups partitions the attribute keys by display group. Groups appear in
// order of first use; attributes without a group land in GroupOther.
func (s *Schema) Groups() []Group {
	if s == nil {
		return nil
	}
	var groups []Group
	pos := make(map[string]int)
	for _, d := range s.defs {
		name := d.Group
		if name == "" {
			name = GroupOther
		}
		i, ok := pos[name]
		if !ok {
			i = len(groups)
			pos[name] = i
			groups = append(groups, Group{Name: name})
		}
		groups[i].Keys = append(groups[i].Keys, d.Key)
	}
	return groups
}
