package engine

import "github.com/roach88/skuquery/internal/query"

// Page is the outcome of slicing a sorted sequence.
type Page[T any] struct {
	Items   []T
	Total   int
	HasMore bool
}

// Paginate returns items[offset:offset+limit] clipped to len(items), the
// unclipped length and whether items remain past the page. An offset past
// the end yields an empty page. The window must already be valid.
func Paginate[T any](items []T, w query.Window) Page[T] {
	total := len(items)
	start := min(w.Offset, total)
	end := total
	if w.Limit < total-start {
		end = start + w.Limit
	}
	return Page[T]{
		Items:   items[start:end],
		Total:   total,
		HasMore: w.Offset+(end-start) < total,
	}
}
