package savedquery

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/skuquery/internal/query"
)

// List returns every saved query ordered by creation time, then id.
// Returns an empty slice (not nil) when nothing is stored.
func (s *Store) List(ctx context.Context) ([]SavedQuery, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, filter, sort, hidden_columns, created_at, shared
		FROM saved_queries
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query saved queries: %w", err)
	}
	defer rows.Close()

	out := []SavedQuery{}
	for rows.Next() {
		sq, err := scanSavedQuery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saved queries: %w", err)
	}
	return out, nil
}

// Get returns the saved query with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (SavedQuery, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, filter, sort, hidden_columns, created_at, shared
		FROM saved_queries
		WHERE id = ?
	`, id)
	sq, err := scanSavedQuery(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SavedQuery{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sq, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSavedQuery(row scanner) (SavedQuery, error) {
	var (
		sq         SavedQuery
		filterJSON string
		sortJSON   sql.NullString
		hiddenJSON string
		shared     int
	)
	if err := row.Scan(&sq.ID, &sq.Name, &filterJSON, &sortJSON, &hiddenJSON, &sq.CreatedAt, &shared); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SavedQuery{}, err
		}
		return SavedQuery{}, fmt.Errorf("scan saved query: %w", err)
	}
	sq.Shared = shared != 0

	filter, err := unmarshalFilter(filterJSON)
	if err != nil {
		return SavedQuery{}, fmt.Errorf("saved query %s: %w", sq.ID, err)
	}
	sq.Filter = filter

	if sortJSON.Valid {
		var spec query.SortSpec
		if err := json.Unmarshal([]byte(sortJSON.String), &spec); err != nil {
			return SavedQuery{}, fmt.Errorf("saved query %s: unmarshal sort: %w", sq.ID, err)
		}
		sq.Sort = &spec
	}

	sq.HiddenColumns = []string{}
	if err := json.Unmarshal([]byte(hiddenJSON), &sq.HiddenColumns); err != nil {
		return SavedQuery{}, fmt.Errorf("saved query %s: unmarshal hidden columns: %w", sq.ID, err)
	}
	if sq.HiddenColumns == nil {
		sq.HiddenColumns = []string{}
	}
	return sq, nil
}

func unmarshalFilter(data string) (query.FilterGroup, error) {
	if data == "" || data == "{}" {
		return query.FilterGroup{}, nil
	}
	var g query.FilterGroup
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		return nil, fmt.Errorf("unmarshal filter: %w", err)
	}
	if g == nil {
		g = query.FilterGroup{}
	}
	return g, nil
}
