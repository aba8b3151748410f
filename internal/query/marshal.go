package query

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/skuquery/internal/attr"
)

// ToMap returns g as plain data suitable for attr.MarshalCanonical.
func (g FilterGroup) ToMap() map[string]any {
	out := make(map[string]any, len(g))
	for field, cond := range g {
		ops := make(map[string]any, len(cond))
		for op, v := range cond {
			if v == nil {
				v = attr.Null{}
			}
			ops[string(op)] = v
		}
		out[field] = ops
	}
	return out
}

// ToMap returns s as plain data.
func (s *SortSpec) ToMap() map[string]any {
	return map[string]any{"field": s.Field, "direction": string(s.Direction)}
}

// ToMap returns w as plain data.
func (w Window) ToMap() map[string]any {
	return map[string]any{"offset": w.Offset, "limit": w.Limit}
}

// ToMap returns q in request shape. Nil filter and sort, and empty hidden
// columns, are omitted.
func (q Query) ToMap() map[string]any {
	out := map[string]any{"pagination": q.Window.ToMap()}
	if q.Filter != nil {
		out["filter"] = q.Filter.ToMap()
	}
	if q.Sort != nil {
		out["sort"] = q.Sort.ToMap()
	}
	if len(q.HiddenColumns) > 0 {
		out["hiddenColumns"] = q.HiddenColumns
	}
	return out
}

// MarshalJSON implements json.Marshaler with canonical key order.
func (g FilterGroup) MarshalJSON() ([]byte, error) {
	return attr.MarshalCanonical(g.ToMap())
}

// UnmarshalJSON implements json.Unmarshaler through ParseFilter.
func (g *FilterGroup) UnmarshalJSON(data []byte) error {
	raw, err := decodeJSON(data)
	if err != nil {
		return err
	}
	parsed, err := ParseFilter(raw)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s SortSpec) MarshalJSON() ([]byte, error) {
	return attr.MarshalCanonical(s.ToMap())
}

// UnmarshalJSON implements json.Unmarshaler. Accepts "order" and ASC/DESC.
func (s *SortSpec) UnmarshalJSON(data []byte) error {
	raw, err := decodeJSON(data)
	if err != nil {
		return err
	}
	parsed, err := parseSort(raw)
	if err != nil {
		return err
	}
	if parsed == nil {
		return fmt.Errorf("sort must be an object")
	}
	*s = *parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (q Query) MarshalJSON() ([]byte, error) {
	return attr.MarshalCanonical(q.ToMap())
}

// UnmarshalJSON implements json.Unmarshaler through Parse.
func (q *Query) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// MarshalJSON writes {"duration": <milliseconds>}.
func (d DebugInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Duration float64 `json:"duration"`
	}{d.Milliseconds()})
}

// UnmarshalJSON reads {"duration": <milliseconds>}.
func (d *DebugInfo) UnmarshalJSON(data []byte) error {
	var raw struct {
		Duration float64 `json:"duration"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Duration = time.Duration(raw.Duration * float64(time.Millisecond))
	return nil
}
