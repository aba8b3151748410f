package engine

import (
	"time"

	"github.com/roach88/skuquery/internal/query"
)

// QueryStats summarizes one successful evaluation. Operators has one entry
// per (field, operator) pair in the filter.
type QueryStats struct {
	Scanned   int
	Matched   int
	Returned  int
	Sorted    bool
	Operators []query.Operator
	Duration  time.Duration
}

// MetricsCollector receives evaluation measurements.
// Implementations must be safe for concurrent use.
type MetricsCollector interface {
	// RecordQuery is called once per successful Evaluate.
	RecordQuery(stats QueryStats)

	// RecordRejected is called when a query fails before evaluation.
	RecordRejected(code query.ErrorCode)
}

// NoopMetricsCollector discards everything.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordQuery(QueryStats)         {}
func (NoopMetricsCollector) RecordRejected(query.ErrorCode) {}
