package savedquery

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/roach88/skuquery/internal/attr"
	"github.com/roach88/skuquery/internal/query"
)

var (
	// ErrNotFound is returned when no saved query has the requested id.
	ErrNotFound = errors.New("saved query not found")

	// ErrInvalidName is returned when a saved query name is blank.
	ErrInvalidName = errors.New("saved query name must not be blank")
)

// SavedQuery is a persisted, named bundle of filter, sort and column
// visibility. CreatedAt is Unix milliseconds.
type SavedQuery struct {
	ID            string
	Name          string
	Filter        query.FilterGroup
	Sort          *query.SortSpec
	HiddenColumns []string
	CreatedAt     int64
	Shared        bool
}

// Created returns CreatedAt as a UTC time.
func (s SavedQuery) Created() time.Time {
	return time.UnixMilli(s.CreatedAt).UTC()
}

// Apply turns a saved query into an evaluable query on the first page.
// The result shares no memory with s.
func Apply(s SavedQuery) query.Query {
	q := query.Query{
		Filter:        s.Filter.Clone(),
		Window:        query.DefaultWindow(),
		HiddenColumns: []string{},
	}
	if q.Filter == nil {
		q.Filter = query.FilterGroup{}
	}
	if s.Sort != nil {
		sort := *s.Sort
		q.Sort = &sort
	}
	if len(s.HiddenColumns) > 0 {
		q.HiddenColumns = slices.Clone(s.HiddenColumns)
	}
	return q
}

// FromQuery captures the filter, sort and hidden columns of q under name.
// The window is dropped. ID and CreatedAt are left for the store to assign.
func FromQuery(name string, q query.Query, shared bool) SavedQuery {
	c := q.Clone()
	return SavedQuery{
		Name:          name,
		Filter:        c.Filter,
		Sort:          c.Sort,
		HiddenColumns: c.HiddenColumns,
		Shared:        shared,
	}
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	return nil
}

// ToMap returns s in wire shape. sort is omitted when nil.
func (s SavedQuery) ToMap() map[string]any {
	filter := s.Filter
	if filter == nil {
		filter = query.FilterGroup{}
	}
	hidden := s.HiddenColumns
	if hidden == nil {
		hidden = []string{}
	}
	out := map[string]any{
		"id":            s.ID,
		"name":          s.Name,
		"filter":        filter.ToMap(),
		"hiddenColumns": hidden,
		"createdAt":     s.CreatedAt,
		"shared":        s.Shared,
	}
	if s.Sort != nil {
		out["sort"] = s.Sort.ToMap()
	}
	return out
}

// MarshalJSON implements json.Marshaler with sorted keys. Strings keep
// their exact bytes so UnmarshalJSON restores an identical saved query.
func (s SavedQuery) MarshalJSON() ([]byte, error) {
	return attr.MarshalExact(s.ToMap())
}

type savedQueryJSON struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Filter        query.FilterGroup `json:"filter"`
	Sort          *query.SortSpec   `json:"sort"`
	HiddenColumns []string          `json:"hiddenColumns"`
	CreatedAt     int64             `json:"createdAt"`
	Shared        bool              `json:"shared"`
}

// UnmarshalJSON implements json.Unmarshaler. Unknown keys are rejected.
func (s *SavedQuery) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var raw savedQueryJSON
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode saved query: %w", err)
	}
	*s = SavedQuery{
		ID:            raw.ID,
		Name:          raw.Name,
		Filter:        raw.Filter,
		Sort:          raw.Sort,
		HiddenColumns: raw.HiddenColumns,
		CreatedAt:     raw.CreatedAt,
		Shared:        raw.Shared,
	}
	if s.Filter == nil {
		s.Filter = query.FilterGroup{}
	}
	if s.HiddenColumns == nil {
		s.HiddenColumns = []string{}
	}
	return nil
}
