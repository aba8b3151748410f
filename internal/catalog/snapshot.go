package catalog

import "fmt"

// Snapshot is an ordered, read-only sequence of records.
// The zero value is an empty snapshot.
type Snapshot struct {
	records []Record
}

// NewSnapshot validates records and returns a snapshot over a private copy.
// Record ids must be unique and every record must pass Record.Validate.
func NewSnapshot(records []Record) (*Snapshot, error) {
	ids := make(map[string]int, len(records))
	out := make([]Record, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if prev, dup := ids[r.ID]; dup {
			return nil, fmt.Errorf("record %d: duplicate id %q (first seen at %d)", i, r.ID, prev)
		}
		ids[r.ID] = i
		out[i] = r.Clone()
	}
	return &Snapshot{records: out}, nil
}

// MustSnapshot is NewSnapshot that panics on error. Intended for fixtures.
func MustSnapshot(records ...Record) *Snapshot {
	s, err := NewSnapshot(records)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of records.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// At returns the record at position i. Callers must not modify the
// returned record's attribute slice.
func (s *Snapshot) At(i int) Record {
	return s.records[i]
}

// Records returns a copy of the record sequence.
func (s *Snapshot) Records() []Record {
	if s == nil {
		return nil
	}
	out := make([]Record, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out
}

// Keys returns every attribute key present in the snapshot, in first-seen order.
func (s *Snapshot) Keys() []string {
	if s == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var keys []string
	for _, r := range s.records {
		for _, a := range r.Attributes {
			if _, ok := seen[a.Key]; ok {
				continue
			}
			seen[a.Key] = struct{}{}
			keys = append(keys, a.Key)
		}
	}
	return keys
}
