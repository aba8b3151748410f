package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/skuquery/internal/attr"
	"github.com/roach88/skuquery/internal/catalog"
)

func TestResolve(t *testing.T) {
	r := catalog.Record{
		ID:        "42",
		SKU:       "SKU-042",
		CreatedAt: 1000,
		UpdatedAt: 2000,
		Attributes: []catalog.Attribute{
			{Key: "name", Value: attr.Text("Desk Lamp")},
			{Key: "id", Value: attr.Text("attribute-id")},
			{Key: "discontinued", Value: attr.Null{}},
		},
	}

	tests := []struct {
		path string
		want attr.Value
	}{
		{"id", attr.Text("42")},
		{"skuId", attr.Text("SKU-042")},
		{"createdAt", attr.Number(1000)},
		{"updatedAt", attr.Number(2000)},
		{"name", attr.Text("Desk Lamp")},
		{"attributes.name", attr.Text("Desk Lamp")},
		{"attributes.id", attr.Text("attribute-id")},
		{"discontinued", attr.Null{}},
		{"attributes.color", attr.Absent{}},
		{"nothing.here", attr.Absent{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Resolve(r, tt.path), tt.path)
	}
}

func TestResolveEmptySKUIsAbsent(t *testing.T) {
	assert.Equal(t, attr.Absent{}, Resolve(catalog.Record{ID: "x"}, "skuId"))
}
