// Package savedquery persists named query bundles (filter, sort and hidden
// columns) in SQLite and turns them back into evaluable queries.
//
// A SavedQuery never stores a pagination window. Apply always starts from the
// first page at query.DefaultLimit, so applying the same saved query twice
// yields identical queries.
//
// The store uses a single connection. Writes are serialized by SQLite; the
// store holds no other mutable state.
package savedquery
