package testutil

import (
	"fmt"
	"sync"
)

// FixedRunIDs hands out pre-seeded run identifiers in order.
//
// This enables deterministic test execution and golden snapshot
// comparison: the same scenario with the same FixedRunIDs produces
// byte-identical results.
//
// Panics when the seeded IDs are exhausted. A test that builds more
// fixtures than it seeded IDs for should fail loudly rather than
// silently minting random identifiers.
//
// Thread-safety: all methods are safe for concurrent use via internal
// mutex, though fixtures consume IDs strictly sequentially.
type FixedRunIDs struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedRunIDs creates a generator over the given IDs. With no
// arguments it seeds a single "test-run-default".
func NewFixedRunIDs(ids ...string) *FixedRunIDs {
	if len(ids) == 0 {
		ids = []string{"test-run-default"}
	}
	return &FixedRunIDs{ids: ids}
}

// Generate returns the next seeded run ID.
//
// Implements harness.RunIDGenerator.
func (g *FixedRunIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic(fmt.Sprintf("FixedRunIDs exhausted after %d IDs", len(g.ids)))
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
