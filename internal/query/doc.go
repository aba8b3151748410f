// Package query defines the declarative query model evaluated by the engine.
//
// A Query is an optional FilterGroup, an optional SortSpec and a required
// pagination Window. A FilterGroup maps field paths to Conditions; a record
// matches when every operator of every condition holds. There is no OR and no
// negation group.
//
// Queries arrive as JSON:
//
//	{
//	  "filter": {"attributes.price": {"greaterThanOrEqual": 10}},
//	  "sort": {"field": "price", "direction": "descending"},
//	  "pagination": {"offset": 0, "limit": 25}
//	}
//
// Parse also accepts older shapes and rewrites them into this one: "$gte"
// style operator names, a nested {"attributes": {"price": {...}}} filter,
// {"order": "ASC"} sort direction and bare values as implicit equality.
// Unknown operators are rejected at parse time.
//
// An "attributes" filter entry is read as the nested shape unless one of its
// keys is an operator name whose value is not an operator object. So
// {"attributes": {"in": {"equals": "x"}}} targets "attributes.in", while
// {"attributes": {"equals": {"value": 1}}} and {"attributes": {"exists": true}}
// are conditions on a field named "attributes".
package query
