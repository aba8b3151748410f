package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/roach88/skuquery/internal/attr"
	"github.com/roach88/skuquery/internal/catalog"
)

// Parse decodes a query request. See the package documentation for the
// accepted shapes. A missing pagination block yields DefaultWindow; a
// present block is range-checked by the engine, not here.
func Parse(data []byte) (Query, error) {
	raw, err := decodeJSON(data)
	if err != nil {
		return Query{}, &Error{Code: CodeMalformedQuery, Message: "invalid JSON", Cause: err}
	}
	doc, ok := raw.(map[string]any)
	if !ok {
		return Query{}, malformed("", "query must be a JSON object, got %s", jsonKind(raw))
	}
	return FromMap(doc)
}

// FromMap builds a Query from already-decoded JSON data.
func FromMap(doc map[string]any) (Query, error) {
	q := Query{Window: DefaultWindow()}
	for key, val := range doc {
		var err error
		switch key {
		case "filter":
			q.Filter, err = ParseFilter(val)
		case "sort":
			q.Sort, err = parseSort(val)
		case "pagination":
			q.Window, err = parseWindow(val)
		case "hiddenColumns":
			q.HiddenColumns, err = parseStrings("hiddenColumns", val)
		default:
			err = malformed(key, "unknown query key %q", key)
		}
		if err != nil {
			return Query{}, err
		}
	}
	return q, nil
}

// ParseFilter converts decoded JSON into a FilterGroup. nil yields a nil
// group. The legacy {"attributes": {key: condition}} nesting is flattened
// into "attributes.<key>" paths.
func ParseFilter(raw any) (FilterGroup, error) {
	if raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, malformed("filter", "filter must be an object, got %s", jsonKind(raw))
	}

	g := make(FilterGroup, len(m))
	for field, val := range m {
		if field == "" {
			return nil, malformed("filter", "empty field path")
		}
		if field == "attributes" && isNestedAttributes(val) {
			for key, inner := range val.(map[string]any) {
				path := catalog.AttributePrefix + key
				cond, err := parseCondition(path, inner)
				if err != nil {
					return nil, err
				}
				if err := mergeCondition(g, path, cond); err != nil {
					return nil, err
				}
			}
			continue
		}
		cond, err := parseCondition(field, val)
		if err != nil {
			return nil, err
		}
		if err := mergeCondition(g, field, cond); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// isNestedAttributes reports whether v is a map of attribute keys rather
// than a condition on a field literally named "attributes". A key that is
// an operator name only counts as an attribute key when its value is itself
// an operator object, so {"in": {"equals": "x"}} nests and
// {"equals": {"value": 1}} does not.
func isNestedAttributes(v any) bool {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return false
	}
	for k, inner := range m {
		if _, isOp := ParseOperator(k); isOp && !isOperatorObject(inner) {
			return false
		}
	}
	return true
}

func isOperatorObject(v any) bool {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return false
	}
	for k := range m {
		if _, isOp := ParseOperator(k); !isOp {
			return false
		}
	}
	return true
}

func mergeCondition(g FilterGroup, field string, cond Condition) error {
	existing, ok := g[field]
	if !ok {
		g[field] = cond
		return nil
	}
	for op, v := range cond {
		if _, dup := existing[op]; dup {
			return &Error{
				Code:     CodeMalformedQuery,
				Message:  "operator given twice for the same field",
				Field:    field,
				Operator: op,
			}
		}
		existing[op] = v
	}
	return nil
}

// parseCondition accepts an operator object or a bare value, which means
// equality.
func parseCondition(field string, raw any) (Condition, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		v, err := attr.FromGo(raw)
		if err != nil {
			return nil, &Error{Code: CodeMalformedQuery, Message: err.Error(), Field: field, Operator: OpEquals, Cause: err}
		}
		return Condition{OpEquals: v}, nil
	}
	if len(m) == 0 {
		return nil, malformed(field, "condition has no operators")
	}

	cond := make(Condition, len(m))
	for name, operand := range m {
		op, ok := ParseOperator(name)
		if !ok {
			return nil, &Error{
				Code:     CodeUnknownOperator,
				Message:  fmt.Sprintf("unknown operator %q", name),
				Field:    field,
				Operator: Operator(name),
			}
		}
		if _, dup := cond[op]; dup {
			return nil, &Error{
				Code:     CodeMalformedQuery,
				Message:  "operator given twice for the same field",
				Field:    field,
				Operator: op,
			}
		}
		v, err := attr.FromGo(operand)
		if err != nil {
			return nil, &Error{Code: CodeMalformedQuery, Message: err.Error(), Field: field, Operator: op, Cause: err}
		}
		cond[op] = v
	}
	return cond, nil
}

func parseSort(raw any) (*SortSpec, error) {
	if raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, malformed("sort", "sort must be an object, got %s", jsonKind(raw))
	}

	spec := &SortSpec{Direction: Ascending}
	var dirSeen bool
	for key, val := range m {
		switch key {
		case "field":
			s, ok := val.(string)
			if !ok || s == "" {
				return nil, malformed("sort.field", "sort field must be a non-empty string")
			}
			spec.Field = s
		case "direction", "order":
			if dirSeen {
				return nil, malformed("sort."+key, "sort has both direction and order")
			}
			dirSeen = true
			s, ok := val.(string)
			if !ok {
				return nil, malformed("sort."+key, "sort %s must be a string", key)
			}
			d, err := ParseDirection(s)
			if err != nil {
				return nil, &Error{Code: CodeMalformedQuery, Message: err.Error(), Field: "sort." + key, Cause: err}
			}
			spec.Direction = d
		default:
			return nil, malformed("sort."+key, "unknown sort key %q", key)
		}
	}
	if spec.Field == "" {
		return nil, malformed("sort.field", "sort field is required")
	}
	return spec, nil
}

func parseWindow(raw any) (Window, error) {
	w := DefaultWindow()
	if raw == nil {
		return w, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return Window{}, malformed("pagination", "pagination must be an object, got %s", jsonKind(raw))
	}
	for key, val := range m {
		n, err := toInt(val)
		if err != nil {
			return Window{}, &Error{Code: CodeMalformedQuery, Message: err.Error(), Field: "pagination." + key, Cause: err}
		}
		switch key {
		case "offset":
			w.Offset = n
		case "limit":
			w.Limit = n
		default:
			return Window{}, malformed("pagination."+key, "unknown pagination key %q", key)
		}
	}
	return w, nil
}

func parseStrings(field string, raw any) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, malformed(field, "%s must be an array of strings", field)
	}
	out := make([]string, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, malformed(field, "%s[%d] must be a string", field, i)
		}
		out[i] = s
	}
	return out, nil
}

func toInt(v any) (int, error) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n.String())
		}
		f = parsed
	case float64:
		f = n
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("expected integer, got %s", jsonKind(v))
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("expected integer, got %v", f)
	}
	return int(f), nil
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after query object")
	}
	return raw, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number, float64, int:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
