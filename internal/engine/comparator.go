package engine

import (
	"slices"

	"github.com/roach88/skuquery/internal/attr"
	"github.com/roach88/skuquery/internal/catalog"
	"github.com/roach88/skuquery/internal/query"
)

// sortKey pairs a snapshot position with its resolved, normalized sort value.
type sortKey struct {
	pos   int
	value attr.Value
}

// sortPositions stable-sorts snapshot positions by spec. Each record's sort
// value is resolved once.
func sortPositions(positions []int, snap *catalog.Snapshot, spec query.SortSpec) []int {
	keys := make([]sortKey, len(positions))
	for i, pos := range positions {
		keys[i] = sortKey{pos: pos, value: attr.Normalize(Resolve(snap.At(pos), spec.Field))}
	}

	desc := spec.Direction == query.Descending
	slices.SortStableFunc(keys, func(a, b sortKey) int {
		return compareValues(a.value, b.value, desc)
	})

	out := make([]int, len(keys))
	for i, k := range keys {
		out[i] = k.pos
	}
	return out
}

// compareValues orders two resolved sort values. Absent and null are the
// smallest values: first ascending, last descending, and equal to each
// other. Everything else follows attr.Compare.
func compareValues(a, b attr.Value, desc bool) int {
	am, bm := attr.IsMissing(a), attr.IsMissing(b)
	var c int
	switch {
	case am && bm:
		return 0
	case am:
		c = -1
	case bm:
		c = 1
	default:
		c = attr.Compare(a, b)
	}
	if desc {
		return -c
	}
	return c
}

// Compare orders two records by spec. It is the comparison Evaluate sorts
// with, exposed for callers that merge pages.
func Compare(a, b catalog.Record, spec query.SortSpec) int {
	av := attr.Normalize(Resolve(a, spec.Field))
	bv := attr.Normalize(Resolve(b, spec.Field))
	return compareValues(av, bv, spec.Direction == query.Descending)
}
