package harness

// Step kinds recorded in the trace.
const (
	KindQuery = "query"
	KindShare = "share"
	KindApply = "apply"
)

// TraceEvent is the observable outcome of one scenario step.
type TraceEvent struct {
	Step     int            `json:"step"`
	Name     string         `json:"name,omitempty"`
	Kind     string         `json:"kind"`
	Query    map[string]any `json:"query,omitempty"`
	IDs      []string       `json:"ids"`
	Total    int            `json:"total"`
	HasMore  bool           `json:"has_more"`
	Error    string         `json:"error,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
	SavedID  string         `json:"saved_id,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation held and the snapshot validated.
	Pass bool `json:"pass"`

	// Trace holds one event per step, in step order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds expectation and validation failures. Empty if Pass.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// toCanonicalMap returns e as plain data for attr.MarshalCanonical. Empty
// optional fields are omitted.
func (e TraceEvent) toCanonicalMap() map[string]any {
	ids := e.IDs
	if ids == nil {
		ids = []string{}
	}
	m := map[string]any{
		"step":     e.Step,
		"kind":     e.Kind,
		"ids":      ids,
		"total":    e.Total,
		"has_more": e.HasMore,
	}
	if e.Name != "" {
		m["name"] = e.Name
	}
	if e.Query != nil {
		m["query"] = e.Query
	}
	if e.Error != "" {
		m["error"] = e.Error
	}
	if len(e.Warnings) > 0 {
		m["warnings"] = e.Warnings
	}
	if e.SavedID != "" {
		m["saved_id"] = e.SavedID
	}
	return m
}
