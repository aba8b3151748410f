// Package engine evaluates queries against catalog snapshots.
//
// Evaluation is a fixed pipeline:
//
//  1. Compile: check the pagination window and compile textContains
//     patterns. Any failure here fails the whole query.
//  2. Filter: resolve each filtered field once per record and fold all of
//     its operators over that value. Matches are collected in a roaring
//     bitmap of snapshot positions; with parallelism > 1 the snapshot is
//     split into contiguous chunks whose bitmaps are OR-ed together.
//  3. Sort: stable sort of the matches on one field. Absent and null values
//     are the smallest values, so they come first ascending and last
//     descending. Ties keep snapshot order.
//  4. Paginate: slice [offset, offset+limit) and report the pre-slice total
//     and hasMore.
//
// FAILURE POLICY:
//
// Unknown fields resolve to absent. An operator whose operand or resolved
// value has the wrong type is a non-match, never an error. Malformed
// patterns and invalid windows reject the query before any record is read.
//
// The Engine holds no per-query state. Evaluate is safe for concurrent use
// as long as callers do not mutate the snapshot.
package engine
