package metrics

import (
	"bytes"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/skuquery/internal/attr"
	"github.com/roach88/skuquery/internal/engine"
	"github.com/roach88/skuquery/internal/query"
	fixtures "github.com/roach88/skuquery/internal/testutil"
)

func TestRecordQuery(t *testing.T) {
	c := New()
	c.RecordQuery(engine.QueryStats{
		Scanned:   3,
		Matched:   2,
		Returned:  2,
		Sorted:    true,
		Operators: []query.Operator{query.OpEquals, query.OpEquals, query.OpIn},
		Duration:  2 * time.Millisecond,
	})
	c.RecordQuery(engine.QueryStats{Scanned: 3, Matched: 0})

	assert.Equal(t, float64(1), testutil.ToFloat64(c.queries.WithLabelValues("true")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.queries.WithLabelValues("false")))
	assert.Equal(t, float64(6), testutil.ToFloat64(c.scanned))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.operators.WithLabelValues("equals")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.operators.WithLabelValues("in")))
}

func TestRecordRejected(t *testing.T) {
	c := New()
	c.RecordRejected(query.CodeMalformedPattern)
	c.RecordRejected(query.CodeMalformedPattern)
	c.RecordRejected(query.CodeInvalidWindow)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.rejected.WithLabelValues(string(query.CodeMalformedPattern))))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.rejected.WithLabelValues(string(query.CodeInvalidWindow))))
}

func TestCollectorWithEngine(t *testing.T) {
	c := New()
	e := engine.New(engine.WithMetrics(c))
	snap := fixtures.ProductSnapshot()

	_, err := e.Evaluate(query.Query{
		Filter: query.FilterGroup{"category": {query.OpEquals: attr.Text("Electronics")}},
		Window: query.DefaultWindow(),
	}, snap)
	require.NoError(t, err)

	_, err = e.Evaluate(query.Query{Window: query.Window{Offset: -1, Limit: 10}}, snap)
	require.Error(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.queries.WithLabelValues("false")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.operators.WithLabelValues("equals")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.rejected.WithLabelValues(string(query.CodeInvalidWindow))))
	assert.Equal(t, 1, testutil.CollectAndCount(c.matched))
}

func TestWriteText(t *testing.T) {
	c := New()
	c.RecordQuery(engine.QueryStats{Scanned: 10, Matched: 4, Operators: []query.Operator{query.OpExists}})

	var buf bytes.Buffer
	require.NoError(t, c.WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, "# TYPE skuquery_queries_total counter")
	assert.Contains(t, out, `skuquery_queries_total{sorted="false"} 1`)
	assert.Contains(t, out, `skuquery_operator_usage_total{operator="exists"} 1`)
	assert.Contains(t, out, "skuquery_records_scanned_total 10")
	assert.Contains(t, out, "skuquery_query_matched_records_count 1")
}
