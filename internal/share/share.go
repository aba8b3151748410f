package share

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gorilla/schema"

	"github.com/roach88/skuquery/internal/attr"
	"github.com/roach88/skuquery/internal/catalog"
	"github.com/roach88/skuquery/internal/query"
)

const (
	// FilterPrefix marks per-attribute filter parameters.
	FilterPrefix = "filter_"

	// SearchKey is the attribute the search parameter matches against.
	SearchKey = "name"
)

// ErrNotShareable is returned by Encode when a query uses conditions that
// have no URL parameter form.
var ErrNotShareable = errors.New("query cannot be expressed as URL parameters")

// Params is the fixed-key part of the URL state. Per-attribute filters
// travel as filter_<key> parameters and are handled separately.
type Params struct {
	Search string   `schema:"search,omitempty"`
	Sort   string   `schema:"sort,omitempty"`
	Order  string   `schema:"order,omitempty"`
	Offset int      `schema:"offset,omitempty"`
	Limit  int      `schema:"limit,omitempty"`
	Hidden []string `schema:"hidden,omitempty"`
}

var (
	decoder = newDecoder()
	encoder = schema.NewEncoder()
)

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// Decode builds a query from URL parameters. Missing offset and limit give
// query.DefaultWindow; range checks are left to the engine.
func Decode(values url.Values) (query.Query, error) {
	var p Params
	if err := decoder.Decode(&p, values); err != nil {
		return query.Query{}, &query.Error{
			Code:    query.CodeMalformedQuery,
			Message: "invalid share parameters",
			Cause:   err,
		}
	}

	q := query.Query{
		Window:        query.DefaultWindow(),
		HiddenColumns: splitHidden(p.Hidden),
	}
	if _, ok := values["offset"]; ok {
		q.Window.Offset = p.Offset
	}
	if _, ok := values["limit"]; ok {
		q.Window.Limit = p.Limit
	}

	filter := query.FilterGroup{}
	if p.Search != "" {
		filter[catalog.AttributePrefix+SearchKey] = literal(p.Search)
	}
	for key, vals := range values {
		attrKey, ok := strings.CutPrefix(key, FilterPrefix)
		if !ok {
			continue
		}
		if attrKey == "" {
			return query.Query{}, &query.Error{
				Code:    query.CodeMalformedQuery,
				Message: "filter parameter has no attribute key",
				Field:   key,
			}
		}
		value := lastNonEmpty(vals)
		if value == "" {
			continue
		}
		path := catalog.AttributePrefix + attrKey
		if _, dup := filter[path]; dup {
			return query.Query{}, &query.Error{
				Code:    query.CodeMalformedQuery,
				Message: "search and " + key + " both constrain " + path,
				Field:   key,
			}
		}
		filter[path] = literal(value)
	}
	if len(filter) > 0 {
		q.Filter = filter
	}

	if p.Sort != "" {
		dir, err := query.ParseDirection(p.Order)
		if err != nil {
			return query.Query{}, &query.Error{
				Code:    query.CodeMalformedQuery,
				Message: err.Error(),
				Field:   "order",
				Cause:   err,
			}
		}
		q.Sort = &query.SortSpec{Field: p.Sort, Direction: dir}
	}
	return q, nil
}

// DecodeString parses a raw query string (without the leading "?").
func DecodeString(raw string) (query.Query, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return query.Query{}, &query.Error{
			Code:    query.CodeMalformedQuery,
			Message: "invalid query string",
			Cause:   err,
		}
	}
	return Decode(values)
}

// Encode renders q as URL parameters. Only literal textContains conditions
// on attributes can be shared; anything else returns ErrNotShareable.
// The default window is omitted.
func Encode(q query.Query) (url.Values, error) {
	p := Params{}
	if len(q.HiddenColumns) > 0 {
		p.Hidden = []string{strings.Join(q.HiddenColumns, ",")}
	}
	if q.Sort != nil {
		p.Sort = q.Sort.Field
		p.Order = "asc"
		if q.Sort.Direction == query.Descending {
			p.Order = "desc"
		}
	}

	filters := make(map[string]string, len(q.Filter))
	seen := make(map[string]struct{}, len(q.Filter))
	for _, path := range q.Filter.Fields() {
		key, reserved := catalog.SplitPath(path)
		if reserved {
			return nil, fmt.Errorf("%w: field %q is not an attribute", ErrNotShareable, path)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: attribute %q is filtered twice", ErrNotShareable, key)
		}
		seen[key] = struct{}{}
		term, err := unquoteCondition(path, q.Filter[path])
		if err != nil {
			return nil, err
		}
		if key == SearchKey {
			p.Search = term
			continue
		}
		filters[FilterPrefix+key] = term
	}

	values := url.Values{}
	if err := encoder.Encode(p, values); err != nil {
		return nil, fmt.Errorf("encode share parameters: %w", err)
	}
	if q.Window != query.DefaultWindow() {
		values.Set("offset", strconv.Itoa(q.Window.Offset))
		values.Set("limit", strconv.Itoa(q.Window.Limit))
	}
	for k, v := range filters {
		values.Set(k, v)
	}
	return values, nil
}

// EncodeString renders q as a query string with keys in sorted order.
func EncodeString(q query.Query) (string, error) {
	values, err := Encode(q)
	if err != nil {
		return "", err
	}
	return values.Encode(), nil
}

func literal(term string) query.Condition {
	return query.Condition{query.OpTextContains: attr.Text(regexp.QuoteMeta(term))}
}

func unquoteCondition(path string, cond query.Condition) (string, error) {
	operand, ok := cond[query.OpTextContains]
	if len(cond) != 1 || !ok {
		return "", fmt.Errorf("%w: field %q must use a single textContains condition", ErrNotShareable, path)
	}
	pattern, ok := operand.(attr.Text)
	if !ok {
		return "", fmt.Errorf("%w: field %q has a non-text pattern", ErrNotShareable, path)
	}
	term := unquoteMeta(string(pattern))
	if regexp.QuoteMeta(term) != string(pattern) {
		return "", fmt.Errorf("%w: field %q pattern %q is not a literal", ErrNotShareable, path, pattern)
	}
	return term, nil
}

// unquoteMeta reverses regexp.QuoteMeta.
func unquoteMeta(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func splitHidden(raw []string) []string {
	var out []string
	for _, item := range raw {
		for _, col := range strings.Split(item, ",") {
			if col = strings.TrimSpace(col); col != "" && !slices.Contains(out, col) {
				out = append(out, col)
			}
		}
	}
	return out
}

func lastNonEmpty(vals []string) string {
	for i := len(vals) - 1; i >= 0; i-- {
		if vals[i] != "" {
			return vals[i]
		}
	}
	return ""
}
