package query

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/roach88/skuquery/internal/attr"
	"github.com/roach88/skuquery/internal/catalog"
)

// DefaultLimit is the page size used when a request omits one and when a
// saved query is applied.
const DefaultLimit = 25

// Condition maps operators to operands for one field path.
type Condition map[Operator]attr.Value

// Operators returns the condition's operators in canonical order.
func (c Condition) Operators() []Operator {
	ops := make([]Operator, 0, len(c))
	for op := range c {
		ops = append(ops, op)
	}
	slices.SortFunc(ops, func(a, b Operator) int { return a.rank() - b.rank() })
	return ops
}

// Equal reports whether both conditions hold the same operators with
// structurally equal operands.
func (c Condition) Equal(other Condition) bool {
	if len(c) != len(other) {
		return false
	}
	for op, v := range c {
		ov, ok := other[op]
		if !ok || !attr.Equal(v, ov) {
			return false
		}
	}
	return true
}

// FilterGroup maps field paths to conditions. All conditions must hold.
type FilterGroup map[string]Condition

// Fields returns the field paths in sorted order.
func (g FilterGroup) Fields() []string {
	return slices.Sorted(maps.Keys(g))
}

// Equal reports structural equality. A nil group equals an empty one.
func (g FilterGroup) Equal(other FilterGroup) bool {
	if len(g) != len(other) {
		return false
	}
	for field, cond := range g {
		oc, ok := other[field]
		if !ok || !cond.Equal(oc) {
			return false
		}
	}
	return true
}

// Clone returns a copy that shares no maps with g. Operand values are
// immutable and shared.
func (g FilterGroup) Clone() FilterGroup {
	if g == nil {
		return nil
	}
	out := make(FilterGroup, len(g))
	for field, cond := range g {
		out[field] = maps.Clone(cond)
	}
	return out
}

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// ParseDirection accepts "ascending"/"descending", "asc"/"desc" and the
// upper-case "ASC"/"DESC" spelling. Empty means ascending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return "", fmt.Errorf("unknown sort direction %q", s)
	}
}

// SortSpec orders results by a single field path.
type SortSpec struct {
	Field     string
	Direction Direction
}

// Equal reports whether two optional sort specs are the same. Both nil is
// equal.
func (s *SortSpec) Equal(other *SortSpec) bool {
	if s == nil || other == nil {
		return s == nil && other == nil
	}
	return *s == *other
}

// Window selects the [Offset, Offset+Limit) slice of the sorted matches.
type Window struct {
	Offset int
	Limit  int
}

// DefaultWindow is the first page at DefaultLimit.
func DefaultWindow() Window {
	return Window{Offset: 0, Limit: DefaultLimit}
}

// Validate checks offset >= 0 and limit > 0. A positive maxLimit also caps
// the limit.
func (w Window) Validate(maxLimit int) error {
	if w.Offset < 0 {
		return NewWindowError("offset must be >= 0, got %d", w.Offset)
	}
	if w.Limit <= 0 {
		return NewWindowError("limit must be > 0, got %d", w.Limit)
	}
	if maxLimit > 0 && w.Limit > maxLimit {
		return NewWindowError("limit %d exceeds maximum %d", w.Limit, maxLimit)
	}
	return nil
}

// Query is one evaluation request. HiddenColumns is view state carried for
// saved queries and shared links; evaluation ignores it.
type Query struct {
	Filter        FilterGroup
	Sort          *SortSpec
	Window        Window
	HiddenColumns []string
}

// Clone returns a deep copy of q.
func (q Query) Clone() Query {
	out := Query{
		Filter: q.Filter.Clone(),
		Window: q.Window,
	}
	if q.Sort != nil {
		s := *q.Sort
		out.Sort = &s
	}
	if q.HiddenColumns != nil {
		out.HiddenColumns = slices.Clone(q.HiddenColumns)
	}
	return out
}

// PageInfo echoes the window and reports whether records remain after it.
type PageInfo struct {
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

// DebugInfo carries informational measurements. Duration serializes as
// fractional milliseconds.
type DebugInfo struct {
	Duration time.Duration `json:"-"`
}

// Milliseconds returns Duration as fractional milliseconds.
func (d DebugInfo) Milliseconds() float64 {
	return float64(d.Duration) / float64(time.Millisecond)
}

// Result is one evaluated page.
type Result struct {
	Data       []catalog.Record `json:"data"`
	Total      int              `json:"total"`
	Pagination PageInfo         `json:"pagination"`
	Debug      DebugInfo        `json:"debugInfo"`
}

// IDs returns the ids of the records in Data, in order.
func (r *Result) IDs() []string {
	ids := make([]string, len(r.Data))
	for i, rec := range r.Data {
		ids[i] = rec.ID
	}
	return ids
}
