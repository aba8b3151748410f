// Package metrics exports engine measurements as Prometheus metrics on a
// private registry.
package metrics

import (
	"fmt"
	"io"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/roach88/skuquery/internal/engine"
	"github.com/roach88/skuquery/internal/query"
)

const namespace = "skuquery"

// Collector implements engine.MetricsCollector.
type Collector struct {
	registry *prometheus.Registry

	queries   *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	duration  prometheus.Histogram
	matched   prometheus.Histogram
	scanned   prometheus.Counter
	operators *prometheus.CounterVec
}

var _ engine.MetricsCollector = (*Collector)(nil)

// New creates a Collector registered on a fresh registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		queries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total number of evaluated queries",
			},
			[]string{"sorted"},
		),
		rejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_rejected_total",
				Help:      "Queries rejected before evaluation, by error code",
			},
			[]string{"code"},
		),
		duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Query evaluation latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		matched: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_matched_records",
				Help:      "Records matching the filter per query",
				Buckets:   prometheus.ExponentialBuckets(1, 10, 7),
			},
		),
		scanned: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_scanned_total",
				Help:      "Records examined by the filter pass",
			},
		),
		operators: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operator_usage_total",
				Help:      "Filter operator occurrences across evaluated queries",
			},
			[]string{"operator"},
		),
	}
}

// RecordQuery implements engine.MetricsCollector.
func (c *Collector) RecordQuery(stats engine.QueryStats) {
	c.queries.WithLabelValues(strconv.FormatBool(stats.Sorted)).Inc()
	c.duration.Observe(stats.Duration.Seconds())
	c.matched.Observe(float64(stats.Matched))
	c.scanned.Add(float64(stats.Scanned))
	for _, op := range stats.Operators {
		c.operators.WithLabelValues(string(op)).Inc()
	}
}

// RecordRejected implements engine.MetricsCollector.
func (c *Collector) RecordRejected(code query.ErrorCode) {
	c.rejected.WithLabelValues(string(code)).Inc()
}

// Registry returns the registry the metrics live on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteText writes every metric in the Prometheus text exposition format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
