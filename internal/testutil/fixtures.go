package testutil

import (
	"github.com/roach88/skuquery/internal/attr"
	"github.com/roach88/skuquery/internal/catalog"
)

const day = int64(86400000)

func quantity(v float64, unit string) attr.Object {
	return attr.Object{"value": attr.Number(v), "unit": attr.Text(unit)}
}

// Products returns the three-product demo catalog.
func Products() []catalog.Record {
	base := Epoch.UnixMilli()
	return []catalog.Record{
		{
			ID:        "1",
			SKU:       "SKU-001",
			CreatedAt: base - 30*day,
			UpdatedAt: base - day,
			Attributes: []catalog.Attribute{
				{Key: "name", Value: attr.Text("Wireless Headphones")},
				{Key: "brand", Value: attr.Text("TechAudio")},
				{Key: "price", Value: quantity(99.99, "USD")},
				{Key: "category", Value: attr.Text("Electronics")},
				{Key: "color", Value: attr.TextList("Black", "White", "Blue")},
				{Key: "weight", Value: quantity(250, "g")},
				{Key: "description", Value: attr.Text("Premium wireless headphones with noise cancellation")},
			},
		},
		{
			ID:        "2",
			SKU:       "SKU-002",
			CreatedAt: base - 30*day,
			UpdatedAt: base - 2*day,
			Attributes: []catalog.Attribute{
				{Key: "name", Value: attr.Text("Gaming Mouse")},
				{Key: "brand", Value: attr.Text("GameTech")},
				{Key: "price", Value: quantity(79.99, "USD")},
				{Key: "category", Value: attr.Text("Electronics")},
				{Key: "color", Value: attr.TextList("RGB", "Black")},
				{Key: "weight", Value: quantity(120, "g")},
				{Key: "dpi", Value: attr.Number(16000)},
			},
		},
		{
			ID:        "3",
			SKU:       "SKU-003",
			CreatedAt: base - 30*day,
			UpdatedAt: base - 3*day,
			Attributes: []catalog.Attribute{
				{Key: "name", Value: attr.Text("Mechanical Keyboard")},
				{Key: "brand", Value: attr.Text("TypeMaster")},
				{Key: "price", Value: quantity(149.99, "USD")},
				{Key: "category", Value: attr.Text("Electronics")},
				{Key: "color", Value: attr.TextList("Black", "Silver")},
				{Key: "switch_type", Value: attr.Text("Cherry MX Blue")},
				{Key: "backlight", Value: attr.Bool(true)},
			},
		},
	}
}

// ProductSnapshot wraps Products in a snapshot.
func ProductSnapshot() *catalog.Snapshot {
	return catalog.MustSnapshot(Products()...)
}

// PricedRecords returns A (price 10), B (price null) and C (price 5), in
// that order. Prices are plain numbers.
func PricedRecords() []catalog.Record {
	base := Epoch.UnixMilli()
	return []catalog.Record{
		{ID: "A", CreatedAt: base, UpdatedAt: base, Attributes: []catalog.Attribute{
			{Key: "name", Value: attr.Text("A")},
			{Key: "price", Value: attr.Number(10)},
		}},
		{ID: "B", CreatedAt: base, UpdatedAt: base, Attributes: []catalog.Attribute{
			{Key: "name", Value: attr.Text("B")},
			{Key: "price", Value: attr.Null{}},
		}},
		{ID: "C", CreatedAt: base, UpdatedAt: base, Attributes: []catalog.Attribute{
			{Key: "name", Value: attr.Text("C")},
			{Key: "price", Value: attr.Number(5)},
		}},
	}
}

// PricedSnapshot wraps PricedRecords in a snapshot.
func PricedSnapshot() *catalog.Snapshot {
	return catalog.MustSnapshot(PricedRecords()...)
}
