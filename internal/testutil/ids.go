package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDGenerator returns UUID-shaped ids that encode a counter:
// 00000000-0000-7000-8000-000000000001, ...-000000000002, and so on.
// The version and variant nibbles match UUIDv7 so the ids pass the same
// shape checks as generated ones.
//
// Thread-safety: safe for concurrent use.
type SequentialIDGenerator struct {
	mu sync.Mutex
	n  uint64
}

// NewSequentialIDGenerator creates a generator whose first id ends in 1.
func NewSequentialIDGenerator() *SequentialIDGenerator {
	return &SequentialIDGenerator{}
}

// Generate returns the next id.
func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("00000000-0000-7000-8000-%012x", g.n)
}

// Reset restarts the sequence.
func (g *SequentialIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
