package harness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/skuquery/internal/catalog"
	"github.com/roach88/skuquery/internal/engine"
	"github.com/roach88/skuquery/internal/query"
	"github.com/roach88/skuquery/internal/savedquery"
	"github.com/roach88/skuquery/internal/schema"
	"github.com/roach88/skuquery/internal/share"
	"github.com/roach88/skuquery/internal/testutil"
)

// Harness holds per-run state.
type Harness struct {
	snap   *catalog.Snapshot
	schema *schema.Schema
	engine *engine.Engine
	store  *savedquery.Store
	saved  map[string]savedquery.SavedQuery
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load the snapshot and optional schema
//  2. Validate records against the schema
//  3. Open a fresh in-memory saved-query store
//  4. Evaluate each step and check its expectations
//
// The returned error covers setup failures only. Expectation failures are
// reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	snap, err := loadSnapshot(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var sch *schema.Schema
	if scenario.Schema != "" {
		if sch, err = schema.LoadDir(scenario.Schema); err != nil {
			return nil, fmt.Errorf("failed to load schema: %w", err)
		}
	}

	st, err := savedquery.Open(":memory:",
		savedquery.WithIDGenerator(testutil.NewSequentialIDGenerator()),
		savedquery.WithClock(testutil.NewStepClock(time.Time{}, time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.DiscardHandler)
	opts := []engine.Option{
		engine.WithClock(testutil.NewStepClock(time.Time{}, time.Millisecond)),
		engine.WithLogger(logger),
		engine.WithMaxLimit(scenario.MaxLimit),
	}
	if scenario.Parallelism > 0 {
		opts = append(opts, engine.WithParallelism(scenario.Parallelism))
	}
	if scenario.ChunkSize > 0 {
		opts = append(opts, engine.WithChunkSize(scenario.ChunkSize))
	}

	h := &Harness{
		snap:   snap,
		schema: sch,
		engine: engine.New(opts...),
		store:  st,
		saved:  make(map[string]savedquery.SavedQuery),
		logger: logger,
	}

	result := NewResult()
	if sch != nil {
		if err := h.validateRecords(result); err != nil {
			return nil, err
		}
	}

	ctx := context.Background()
	for i, step := range scenario.Steps {
		event, err := h.executeStep(ctx, i, step)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		result.Trace = append(result.Trace, event)
		for _, msg := range checkExpect(i, step, event) {
			result.AddError(msg)
		}
	}
	return result, nil
}

func loadSnapshot(s *Scenario) (*catalog.Snapshot, error) {
	if s.Snapshot != "" {
		return catalog.LoadFile(s.Snapshot)
	}
	records, err := catalog.DecodeData(s.Records)
	if err != nil {
		return nil, err
	}
	return catalog.NewSnapshot(records)
}

func (h *Harness) validateRecords(result *Result) error {
	v, err := schema.NewValidator(h.schema)
	if err != nil {
		return fmt.Errorf("failed to build validator: %w", err)
	}
	for _, err := range v.ValidateSnapshot(h.snap) {
		result.AddError(err.Error())
	}
	return nil
}

// executeStep builds the step's query, evaluates it and saves it when asked.
// Query errors become part of the event; only store failures are returned.
func (h *Harness) executeStep(ctx context.Context, i int, step Step) (TraceEvent, error) {
	event := TraceEvent{Step: i, Name: step.Name, Kind: step.Kind()}

	q, err := h.buildQuery(step)
	if err != nil {
		event.Error = errorCode(err)
		return event, nil
	}
	event.Query = q.ToMap()

	if h.schema != nil {
		for _, w := range query.Lint(q, h.schema).Warnings {
			event.Warnings = append(event.Warnings, string(w.Code))
		}
	}

	res, err := h.engine.Evaluate(q, h.snap)
	if err != nil {
		event.Error = errorCode(err)
	} else {
		event.IDs = res.IDs()
		event.Total = res.Total
		event.HasMore = res.Pagination.HasMore
	}

	if step.Save != "" {
		sq, err := h.store.SaveQuery(ctx, step.Save, q, step.Shared)
		if err != nil {
			return event, err
		}
		h.saved[step.Save] = sq
		event.SavedID = sq.ID
	}
	return event, nil
}

func (h *Harness) buildQuery(step Step) (query.Query, error) {
	switch step.Kind() {
	case KindQuery:
		return query.FromMap(step.Query)
	case KindShare:
		return share.DecodeString(step.Share)
	default:
		ref, ok := h.saved[step.Apply]
		if !ok {
			return query.Query{}, fmt.Errorf("no saved query named %q", step.Apply)
		}
		sq, err := h.store.Get(context.Background(), ref.ID)
		if err != nil {
			return query.Query{}, err
		}
		return savedquery.Apply(sq), nil
	}
}

// errorCode returns the query error code, or the message for other errors.
func errorCode(err error) string {
	if code, ok := query.CodeOf(err); ok {
		return string(code)
	}
	return err.Error()
}
