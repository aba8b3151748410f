package savedquery

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/skuquery/internal/attr"
	"github.com/roach88/skuquery/internal/query"
)

// Save stores a new saved query and returns it with its assigned id and
// creation time. filter may be nil (no conditions); sort is optional.
func (s *Store) Save(ctx context.Context, name string, filter query.FilterGroup, sort *query.SortSpec, hidden []string, shared bool) (SavedQuery, error) {
	if err := validateName(name); err != nil {
		return SavedQuery{}, err
	}

	sq := SavedQuery{
		ID:            s.ids.Generate(),
		Name:          name,
		Filter:        filter.Clone(),
		HiddenColumns: slices.Clone(hidden),
		CreatedAt:     s.clock.Now().UnixMilli(),
		Shared:        shared,
	}
	if sq.Filter == nil {
		sq.Filter = query.FilterGroup{}
	}
	if sq.HiddenColumns == nil {
		sq.HiddenColumns = []string{}
	}
	if sort != nil {
		sc := *sort
		sq.Sort = &sc
	}

	filterJSON, err := marshalFilter(sq.Filter)
	if err != nil {
		return SavedQuery{}, err
	}
	sortJSON, err := marshalSort(sq.Sort)
	if err != nil {
		return SavedQuery{}, err
	}
	hiddenJSON, err := marshalHidden(sq.HiddenColumns)
	if err != nil {
		return SavedQuery{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saved_queries (id, name, filter, sort, hidden_columns, created_at, shared)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sq.ID, sq.Name, filterJSON, sortJSON, hiddenJSON, sq.CreatedAt, boolToInt(sq.Shared))
	if err != nil {
		return SavedQuery{}, fmt.Errorf("write saved query: %w", err)
	}
	return sq, nil
}

// SaveQuery stores the filter, sort and hidden columns of q under name.
func (s *Store) SaveQuery(ctx context.Context, name string, q query.Query, shared bool) (SavedQuery, error) {
	return s.Save(ctx, name, q.Filter, q.Sort, q.HiddenColumns, shared)
}

// Delete removes a saved query. Returns ErrNotFound if id does not exist.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_queries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete saved query: %w", err)
	}
	return expectOneRow(res, id)
}

// SetShared updates the shared flag. Returns ErrNotFound if id does not exist.
func (s *Store) SetShared(ctx context.Context, id string, shared bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE saved_queries SET shared = ? WHERE id = ?`, boolToInt(shared), id)
	if err != nil {
		return fmt.Errorf("update saved query: %w", err)
	}
	return expectOneRow(res, id)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func expectOneRow(res rowsAffecter, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func marshalFilter(g query.FilterGroup) (string, error) {
	data, err := attr.MarshalExact(g.ToMap())
	if err != nil {
		return "", fmt.Errorf("marshal filter: %w", err)
	}
	return string(data), nil
}

// marshalSort returns nil for a nil spec so the column stores SQL NULL.
func marshalSort(spec *query.SortSpec) (any, error) {
	if spec == nil {
		return nil, nil
	}
	data, err := attr.MarshalExact(spec.ToMap())
	if err != nil {
		return nil, fmt.Errorf("marshal sort: %w", err)
	}
	return string(data), nil
}

func marshalHidden(cols []string) (string, error) {
	data, err := attr.MarshalExact(cols)
	if err != nil {
		return "", fmt.Errorf("marshal hidden columns: %w", err)
	}
	return string(data), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
