// Package schema describes the known attribute keys of a catalog: declared
// type, optional fixed choices, required flag and display group.
//
// Schemas are written in CUE:
//
//	attribute: name: {
//		name:     "Product Name"
//		type:     "TEXT"
//		required: true
//		group:    "Basic Info"
//	}
//	attribute: category: {
//		type:    "DROPDOWN"
//		choices: ["Electronics", "Furniture"]
//	}
//
// The query engine never consults a schema. It is used to group attributes
// for display, to lint queries, and to validate records through a generated
// JSON Schema.
package schema
