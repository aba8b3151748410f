package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/skuquery/internal/attr"
	"github.com/roach88/skuquery/internal/catalog"
	"github.com/roach88/skuquery/internal/query"
)

func rec(id string, v attr.Value) catalog.Record {
	r := catalog.Record{ID: id}
	if attr.KindOf(v) != attr.KindAbsent {
		r.Attributes = []catalog.Attribute{{Key: "k", Value: v}}
	}
	return r
}

func TestCompareNullsSmallest(t *testing.T) {
	asc := query.SortSpec{Field: "k", Direction: query.Ascending}
	desc := query.SortSpec{Field: "k", Direction: query.Descending}

	missing := []catalog.Record{rec("absent", attr.Absent{}), rec("null", attr.Null{})}
	present := []catalog.Record{
		rec("bool", attr.Bool(false)),
		rec("num", attr.Number(-1e9)),
		rec("text", attr.Text("")),
		rec("list", attr.List{}),
	}

	for _, m := range missing {
		for _, p := range present {
			assert.Equal(t, -1, Compare(m, p, asc), "%s vs %s asc", m.ID, p.ID)
			assert.Equal(t, 1, Compare(p, m, asc), "%s vs %s asc", p.ID, m.ID)
			assert.Equal(t, 1, Compare(m, p, desc), "%s vs %s desc", m.ID, p.ID)
			assert.Equal(t, -1, Compare(p, m, desc), "%s vs %s desc", p.ID, m.ID)
		}
	}
	assert.Equal(t, 0, Compare(missing[0], missing[1], asc))
	assert.Equal(t, 0, Compare(missing[0], missing[1], desc))
}

func TestCompareNaturalOrder(t *testing.T) {
	asc := query.SortSpec{Field: "k", Direction: query.Ascending}

	assert.Equal(t, -1, Compare(rec("a", attr.Number(2)), rec("b", attr.Number(10)), asc))
	assert.Equal(t, -1, Compare(rec("a", attr.Text("Apple")), rec("b", attr.Text("Banana")), asc))
	assert.Equal(t, -1, Compare(rec("a", attr.Text("Zebra")), rec("b", attr.Text("apple")), asc), "byte order")
	assert.Equal(t, 0, Compare(rec("a", attr.Text("cafe\u0301")), rec("b", attr.Text("caf\u00e9")), asc), "nfc")
	assert.Equal(t, -1, Compare(rec("a", attr.Number(1e9)), rec("b", attr.Text("0")), asc), "numbers before text")
}

func TestSortPositionsStable(t *testing.T) {
	snap := catalog.MustSnapshot(
		rec("a", attr.Number(2)),
		rec("b", attr.Number(1)),
		rec("c", attr.Number(2)),
		rec("d", attr.Null{}),
		rec("e", attr.Number(1)),
		rec("f", attr.Absent{}),
	)
	all := []int{0, 1, 2, 3, 4, 5}

	asc := sortPositions(all, snap, query.SortSpec{Field: "k", Direction: query.Ascending})
	assert.Equal(t, []int{3, 5, 1, 4, 0, 2}, asc)

	desc := sortPositions(all, snap, query.SortSpec{Field: "k", Direction: query.Descending})
	assert.Equal(t, []int{0, 2, 1, 4, 3, 5}, desc)
}

func TestSortByReservedField(t *testing.T) {
	snap := catalog.MustSnapshot(
		catalog.Record{ID: "x", UpdatedAt: 300},
		catalog.Record{ID: "y", UpdatedAt: 100},
		catalog.Record{ID: "z", UpdatedAt: 200},
	)
	got := sortPositions([]int{0, 1, 2}, snap, query.SortSpec{Field: "updatedAt", Direction: query.Descending})
	assert.Equal(t, []int{0, 2, 1}, got)
}
