package engine

import (
	"github.com/roach88/skuquery/internal/attr"
	"github.com/roach88/skuquery/internal/catalog"
)

// Resolve returns the value a field path selects on r.
//
// Reserved paths read fixed properties: id and skuId as text, createdAt and
// updatedAt as millisecond numbers. An empty skuId is absent. Every other
// path, with or without the "attributes." prefix, looks up an attribute key.
// Resolve never fails; unknown keys yield attr.Absent.
func Resolve(r catalog.Record, path string) attr.Value {
	key, reserved := catalog.SplitPath(path)
	if reserved {
		switch key {
		case catalog.FieldID:
			return attr.Text(r.ID)
		case catalog.FieldSKU:
			if r.SKU == "" {
				return attr.Absent{}
			}
			return attr.Text(r.SKU)
		case catalog.FieldCreatedAt:
			return attr.Number(r.CreatedAt)
		case catalog.FieldUpdatedAt:
			return attr.Number(r.UpdatedAt)
		}
	}
	v, _ := r.Lookup(key)
	return v
}
