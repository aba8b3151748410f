// Package catalog holds attributed records and the read-only snapshots the
// query engine evaluates against.
//
// A Record has four fixed properties (id, skuId, createdAt, updatedAt) and an
// ordered list of attributes with unique keys. A Snapshot is an ordered,
// validated sequence of records. Nothing in this package mutates a snapshot
// after construction, so one snapshot can serve many concurrent queries.
//
// Snapshots are loaded from JSON or YAML files in the same shape the record
// API produces:
//
//	records:
//	  - id: "1"
//	    skuId: SKU-001
//	    createdAt: 1700000000000
//	    updatedAt: 1700000500000
//	    attributes:
//	      - key: name
//	        value: Wireless Headphones
//	      - key: price
//	        value: {value: 99.99, unit: USD}
package catalog
