package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/skuquery/internal/attr"
	"github.com/roach88/skuquery/internal/catalog"
	"github.com/roach88/skuquery/internal/query"
)

func evalOne(t *testing.T, op query.Operator, operand, value attr.Value) bool {
	t.Helper()
	p, err := compileFilter(query.FilterGroup{"f": {op: operand}})
	require.NoError(t, err)
	r := catalog.Record{ID: "r"}
	if attr.KindOf(value) != attr.KindAbsent {
		r.Attributes = []catalog.Attribute{{Key: "f", Value: value}}
	}
	return p.matches(r)
}

func TestOperatorSemantics(t *testing.T) {
	tests := []struct {
		name    string
		op      query.Operator
		operand attr.Value
		value   attr.Value
		want    bool
	}{
		{"equals text", query.OpEquals, attr.Text("a"), attr.Text("a"), true},
		{"equals case sensitive", query.OpEquals, attr.Text("a"), attr.Text("A"), false},
		{"equals number", query.OpEquals, attr.Number(1), attr.Number(1.0), true},
		{"equals cross kind", query.OpEquals, attr.Number(1), attr.Text("1"), false},
		{"equals list", query.OpEquals, attr.TextList("a", "b"), attr.TextList("a", "b"), true},
		{"equals object", query.OpEquals, attr.Object{"v": attr.Number(1)}, attr.Object{"v": attr.Number(1)}, true},
		{"equals null matches null", query.OpEquals, attr.Null{}, attr.Null{}, true},
		{"equals null skips absent", query.OpEquals, attr.Null{}, attr.Absent{}, false},
		{"equals absent value", query.OpEquals, attr.Text("a"), attr.Absent{}, false},
		{"equals nfc", query.OpEquals, attr.Text("cafe\u0301"), attr.Text("caf\u00e9"), true},
		{"equals object nfc", query.OpEquals, attr.Object{"unit": attr.Text("cafe\u0301")}, attr.Object{"unit": attr.Text("caf\u00e9")}, true},
		{"equals object nfc key", query.OpEquals, attr.Object{"cafe\u0301": attr.Number(1)}, attr.Object{"caf\u00e9": attr.Number(1)}, true},

		{"notEquals differs", query.OpNotEquals, attr.Text("a"), attr.Text("b"), true},
		{"notEquals same", query.OpNotEquals, attr.Text("a"), attr.Text("a"), false},
		{"notEquals absent", query.OpNotEquals, attr.Text("a"), attr.Absent{}, true},

		{"gt", query.OpGreaterThan, attr.Number(10), attr.Number(11), true},
		{"gt equal", query.OpGreaterThan, attr.Number(10), attr.Number(10), false},
		{"gte equal", query.OpGreaterThanOrEqual, attr.Number(10), attr.Number(10), true},
		{"lt", query.OpLessThan, attr.Number(10), attr.Number(9.5), true},
		{"lte equal", query.OpLessThanOrEqual, attr.Number(10), attr.Number(10), true},
		{"lte above", query.OpLessThanOrEqual, attr.Number(10), attr.Number(10.01), false},
		{"gt on text", query.OpGreaterThan, attr.Number(1), attr.Text("5"), false},
		{"gt text operand", query.OpGreaterThan, attr.Text("1"), attr.Number(5), false},
		{"lt on null", query.OpLessThan, attr.Number(1), attr.Null{}, false},
		{"lt on absent", query.OpLessThan, attr.Number(1), attr.Absent{}, false},
		{"gte on object", query.OpGreaterThanOrEqual, attr.Number(1), attr.Object{"value": attr.Number(5)}, false},

		{"in hit", query.OpIn, attr.TextList("x", "y"), attr.Text("y"), true},
		{"in miss", query.OpIn, attr.TextList("x", "y"), attr.Text("z"), false},
		{"in mixed kinds", query.OpIn, attr.List{attr.Number(1), attr.Text("a")}, attr.Number(1), true},
		{"in null element", query.OpIn, attr.List{attr.Null{}}, attr.Null{}, true},
		{"in non-list operand", query.OpIn, attr.Text("y"), attr.Text("y"), false},
		{"in absent", query.OpIn, attr.TextList("x"), attr.Absent{}, false},

		{"exists true present", query.OpExists, attr.Bool(true), attr.Text("x"), true},
		{"exists true null", query.OpExists, attr.Bool(true), attr.Null{}, true},
		{"exists true absent", query.OpExists, attr.Bool(true), attr.Absent{}, false},
		{"exists false absent", query.OpExists, attr.Bool(false), attr.Absent{}, true},
		{"exists false null", query.OpExists, attr.Bool(false), attr.Null{}, false},
		{"exists non-bool operand", query.OpExists, attr.Text("true"), attr.Text("x"), false},

		{"textContains substring", query.OpTextContains, attr.Text("phone"), attr.Text("Wireless Headphones"), true},
		{"textContains case insensitive", query.OpTextContains, attr.Text("HEAD"), attr.Text("headphones"), true},
		{"textContains regex", query.OpTextContains, attr.Text("^sku-00[12]$"), attr.Text("SKU-002"), true},
		{"textContains miss", query.OpTextContains, attr.Text("mouse"), attr.Text("Keyboard"), false},
		{"textContains on number", query.OpTextContains, attr.Text("1"), attr.Number(16000), false},
		{"textContains on list", query.OpTextContains, attr.Text("Black"), attr.TextList("Black"), false},
		{"textContains on null", query.OpTextContains, attr.Text(".*"), attr.Null{}, false},
		{"textContains non-text operand", query.OpTextContains, attr.Number(1), attr.Text("1"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evalOne(t, tt.op, tt.operand, tt.value))
		})
	}
}

func TestOperatorsOnSameFieldAreConjoined(t *testing.T) {
	p, err := compileFilter(query.FilterGroup{
		"price": {query.OpGreaterThanOrEqual: attr.Number(10), query.OpLessThanOrEqual: attr.Number(100)},
	})
	require.NoError(t, err)

	rec := func(price float64) catalog.Record {
		return catalog.Record{ID: "r", Attributes: []catalog.Attribute{{Key: "price", Value: attr.Number(price)}}}
	}
	assert.True(t, p.matches(rec(10)))
	assert.True(t, p.matches(rec(55)))
	assert.True(t, p.matches(rec(100)))
	assert.False(t, p.matches(rec(9)))
	assert.False(t, p.matches(rec(101)))
}

func TestFieldsAreConjoined(t *testing.T) {
	p, err := compileFilter(query.FilterGroup{
		"brand": {query.OpEquals: attr.Text("GameTech")},
		"dpi":   {query.OpGreaterThan: attr.Number(1000)},
	})
	require.NoError(t, err)

	both := catalog.Record{ID: "1", Attributes: []catalog.Attribute{
		{Key: "brand", Value: attr.Text("GameTech")},
		{Key: "dpi", Value: attr.Number(16000)},
	}}
	one := catalog.Record{ID: "2", Attributes: []catalog.Attribute{
		{Key: "brand", Value: attr.Text("GameTech")},
	}}
	assert.True(t, p.matches(both))
	assert.False(t, p.matches(one))
}

func TestEmptyFilterMatchesEverything(t *testing.T) {
	p, err := compileFilter(nil)
	require.NoError(t, err)
	assert.True(t, p.matches(catalog.Record{ID: "x"}))
	assert.Empty(t, p.operators())
}

func TestMalformedPattern(t *testing.T) {
	_, err := compileFilter(query.FilterGroup{"name": {query.OpTextContains: attr.Text("([unclosed")}})
	require.Error(t, err)
	assert.True(t, query.IsMalformedPattern(err))

	var qe *query.Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "name", qe.Field)
}

func TestPlanOperators(t *testing.T) {
	p, err := compileFilter(query.FilterGroup{
		"b": {query.OpExists: attr.Bool(true)},
		"a": {query.OpLessThan: attr.Number(1), query.OpEquals: attr.Number(0)},
	})
	require.NoError(t, err)
	assert.Equal(t, []query.Operator{query.OpEquals, query.OpLessThan, query.OpExists}, p.operators())
}
