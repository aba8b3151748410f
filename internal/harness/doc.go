// Package harness runs YAML query scenarios against an in-memory catalog
// snapshot and records a deterministic trace for golden comparison.
//
// # Scenario Format
//
//	name: nulls_first_ascending
//	description: "Ascending price sort places null first"
//	snapshot: ../catalog/products.yaml   # or inline records:
//	records:
//	  - id: A
//	    attributes: { price: 10 }
//	schema: ../schema                    # optional CUE schema dir
//	max_limit: 100                       # optional engine settings
//	parallelism: 2
//	steps:
//	  - name: sort by price
//	    query:
//	      sort: { field: price, direction: ascending }
//	    save: by-price                   # optional: persist this step's query
//	    expect:
//	      ids: [B, C, A]
//	      total: 3
//	      has_more: false
//	  - name: reload
//	    apply: by-price                  # evaluate a saved query
//	  - name: shared link
//	    share: "search=phone&sort=price&order=desc"
//	  - name: bad pattern
//	    query:
//	      filter: { name: { textContains: "(" } }
//	    expect:
//	      error: MALFORMED_PATTERN
//
// Each step has exactly one of query, share or apply. Relative paths
// resolve against the scenario file's directory.
//
// # Deterministic Testing
//
// Every run gets a fresh in-memory saved-query store with sequential ids and
// a stepping clock, and the engine runs on a stepping clock too. Durations
// are left out of the trace, so identical scenarios produce identical bytes.
//
// # Golden Files
//
// RunWithGolden compares the canonical trace JSON against
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
