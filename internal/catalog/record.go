package catalog

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/skuquery/internal/attr"
)

// Reserved field names. Every other field path addresses an attribute.
const (
	FieldID        = "id"
	FieldSKU       = "skuId"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"

	// AttributePrefix namespaces attribute keys in field paths,
	// e.g. "attributes.price".
	AttributePrefix = "attributes."
)

// ReservedFields lists the fixed record properties in display order.
var ReservedFields = []string{FieldID, FieldSKU, FieldCreatedAt, FieldUpdatedAt}

// IsReserved reports whether field names a fixed record property.
func IsReserved(field string) bool {
	switch field {
	case FieldID, FieldSKU, FieldCreatedAt, FieldUpdatedAt:
		return true
	}
	return false
}

// SplitPath maps a field path to what it addresses. Reserved paths return
// (path, true). "attributes.<key>" and any other bare path return the
// attribute key and false.
func SplitPath(path string) (string, bool) {
	if IsReserved(path) {
		return path, true
	}
	if key, ok := strings.CutPrefix(path, AttributePrefix); ok {
		return key, false
	}
	return path, false
}

// Attribute is one key/value pair on a record.
type Attribute struct {
	Key   string
	Value attr.Value
}

// Record is a product-like entity with fixed identity fields and an open
// attribute set. Timestamps are Unix milliseconds.
type Record struct {
	ID         string
	SKU        string
	CreatedAt  int64
	UpdatedAt  int64
	Attributes []Attribute
}

// Lookup returns the value stored under key. The second result is false when
// the key does not exist on the record.
func (r Record) Lookup(key string) (attr.Value, bool) {
	for _, a := range r.Attributes {
		if a.Key == key {
			if a.Value == nil {
				return attr.Null{}, true
			}
			return a.Value, true
		}
	}
	return attr.Absent{}, false
}

// Validate checks the record invariants: a non-empty id and unique,
// non-empty attribute keys.
func (r Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("record id is required")
	}
	seen := make(map[string]struct{}, len(r.Attributes))
	for i, a := range r.Attributes {
		if a.Key == "" {
			return fmt.Errorf("record %s: attribute %d has empty key", r.ID, i)
		}
		if _, dup := seen[a.Key]; dup {
			return fmt.Errorf("record %s: duplicate attribute key %q", r.ID, a.Key)
		}
		seen[a.Key] = struct{}{}
	}
	return nil
}

// Clone returns a copy whose attribute slice is not shared with r.
// Attribute values are immutable and shared.
func (r Record) Clone() Record {
	if r.Attributes != nil {
		r.Attributes = slices.Clone(r.Attributes)
	}
	return r
}

// AttributeMap returns attributes as plain Go data keyed by attribute key.
func (r Record) AttributeMap() map[string]any {
	m := make(map[string]any, len(r.Attributes))
	for _, a := range r.Attributes {
		m[a.Key] = attr.ToGo(a.Value)
	}
	return m
}

// recordJSON is the wire shape of a record.
type recordJSON struct {
	ID         string      `json:"id"`
	SKU        string      `json:"skuId,omitempty"`
	CreatedAt  int64       `json:"createdAt"`
	UpdatedAt  int64       `json:"updatedAt"`
	Attributes []Attribute `json:"attributes"`
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	attrs := r.Attributes
	if attrs == nil {
		attrs = []Attribute{}
	}
	return json.Marshal(recordJSON{
		ID:         r.ID,
		SKU:        r.SKU,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		Attributes: attrs,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Record{
		ID:         raw.ID,
		SKU:        raw.SKU,
		CreatedAt:  raw.CreatedAt,
		UpdatedAt:  raw.UpdatedAt,
		Attributes: raw.Attributes,
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (a Attribute) MarshalJSON() ([]byte, error) {
	v := a.Value
	if v == nil {
		v = attr.Null{}
	}
	value, err := attr.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", a.Key, err)
	}
	key, err := json.Marshal(a.Key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(key)+len(value)+18)
	out = append(out, `{"key":`...)
	out = append(out, key...)
	out = append(out, `,"value":`...)
	out = append(out, value...)
	out = append(out, '}')
	return out, nil
}

// UnmarshalJSON implements json.Unmarshaler. A missing value decodes as Null.
func (a *Attribute) UnmarshalJSON(data []byte) error {
	var raw struct {
		Key   string          `json:"key"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Key = raw.Key
	if len(raw.Value) == 0 {
		a.Value = attr.Null{}
		return nil
	}
	v, err := attr.Decode(raw.Value)
	if err != nil {
		return fmt.Errorf("attribute %q: %w", raw.Key, err)
	}
	a.Value = v
	return nil
}
