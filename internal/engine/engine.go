package engine

import (
	"fmt"
	"log/slog"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/skuquery/internal/catalog"
	"github.com/roach88/skuquery/internal/query"
)

// DefaultChunkSize is the number of records one filter goroutine scans.
const DefaultChunkSize = 4096

// Engine evaluates queries. It is immutable after New.
type Engine struct {
	clock       Clock
	logger      *slog.Logger
	metrics     MetricsCollector
	parallelism int
	chunkSize   int
	maxLimit    int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used to measure evaluation time.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger sets the logger. Rejections log at WARN, evaluations at DEBUG.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m MetricsCollector) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithParallelism bounds the number of goroutines in the filter pass.
// Values below 1 mean 1.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		e.parallelism = max(n, 1)
	}
}

// WithChunkSize sets how many records each filter goroutine scans.
// Values below 1 restore DefaultChunkSize.
func WithChunkSize(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = DefaultChunkSize
		}
		e.chunkSize = n
	}
}

// WithMaxLimit rejects windows whose limit exceeds n. Zero means no cap.
func WithMaxLimit(n int) Option {
	return func(e *Engine) {
		e.maxLimit = max(n, 0)
	}
}

// New creates an Engine. Defaults: system clock, discarded logs, no-op
// metrics, sequential filtering, no limit cap.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:       SystemClock{},
		logger:      slog.New(slog.DiscardHandler),
		metrics:     NoopMetricsCollector{},
		parallelism: 1,
		chunkSize:   DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate filters, sorts and paginates snap according to q.
//
// The returned error is a *query.Error with code INVALID_PAGINATION_WINDOW
// or MALFORMED_PATTERN; no records are read in that case. Records in the
// result are copies and may be modified by the caller.
func (e *Engine) Evaluate(q query.Query, snap *catalog.Snapshot) (*query.Result, error) {
	start := e.clock.Now()

	p, err := e.compile(q)
	if err != nil {
		code, _ := query.CodeOf(err)
		e.metrics.RecordRejected(code)
		e.logger.Warn("query rejected", "code", string(code), "error", err)
		return nil, err
	}

	matches := e.filter(p, snap)
	positions := make([]int, 0, matches.GetCardinality())
	it := matches.Iterator()
	for it.HasNext() {
		positions = append(positions, int(it.Next()))
	}

	if q.Sort != nil {
		positions = sortPositions(positions, snap, *q.Sort)
	}

	page := Paginate(positions, q.Window)
	data := make([]catalog.Record, len(page.Items))
	for i, pos := range page.Items {
		data[i] = snap.At(pos).Clone()
	}

	elapsed := e.clock.Now().Sub(start)
	e.metrics.RecordQuery(QueryStats{
		Scanned:   snap.Len(),
		Matched:   page.Total,
		Returned:  len(data),
		Sorted:    q.Sort != nil,
		Operators: p.operators(),
		Duration:  elapsed,
	})
	e.logger.Debug("query evaluated",
		"scanned", snap.Len(),
		"matched", page.Total,
		"returned", len(data),
		"offset", q.Window.Offset,
		"limit", q.Window.Limit,
		"duration", elapsed,
	)

	return &query.Result{
		Data:  data,
		Total: page.Total,
		Pagination: query.PageInfo{
			Offset:  q.Window.Offset,
			Limit:   q.Window.Limit,
			HasMore: page.HasMore,
		},
		Debug: query.DebugInfo{Duration: elapsed},
	}, nil
}

// Count returns the number of records in snap matching g.
func (e *Engine) Count(g query.FilterGroup, snap *catalog.Snapshot) (int, error) {
	p, err := compileFilter(g)
	if err != nil {
		return 0, err
	}
	return int(e.filter(p, snap).GetCardinality()), nil
}

func (e *Engine) compile(q query.Query) (plan, error) {
	if err := q.Window.Validate(e.maxLimit); err != nil {
		return nil, err
	}
	p, err := compileFilter(q.Filter)
	if err != nil {
		return nil, fmt.Errorf("compile filter: %w", err)
	}
	return p, nil
}

// filter returns the snapshot positions that satisfy p.
func (e *Engine) filter(p plan, snap *catalog.Snapshot) *roaring.Bitmap {
	n := snap.Len()
	if e.parallelism <= 1 || n <= e.chunkSize {
		return scanRange(p, snap, 0, n)
	}

	chunks := (n + e.chunkSize - 1) / e.chunkSize
	parts := make([]*roaring.Bitmap, chunks)

	var g errgroup.Group
	g.SetLimit(e.parallelism)
	for i := range chunks {
		lo := i * e.chunkSize
		hi := min(lo+e.chunkSize, n)
		g.Go(func() error {
			parts[i] = scanRange(p, snap, lo, hi)
			return nil
		})
	}
	// Workers never fail; Wait only joins them.
	_ = g.Wait()

	return roaring.FastOr(parts...)
}

func scanRange(p plan, snap *catalog.Snapshot, lo, hi int) *roaring.Bitmap {
	bm := roaring.New()
	for i := lo; i < hi; i++ {
		if p.matches(snap.At(i)) {
			bm.Add(uint32(i))
		}
	}
	return bm
}
