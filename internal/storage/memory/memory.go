// internal/storage/memory/memory.go
package memory

import (
	"sync"

	"github.com/driftworks/swaps/pkg/core"
)

// Backend keeps the persisted ledger in memory. Used in tests and when the
// host runs without a writable profile directory.
type Backend struct {
	mu      sync.Mutex
	entries []core.LedgerEntry
}

// New creates a new memory backend.
func New() *Backend {
	return &Backend{}
}

// Init initializes the backend.
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources.
func (b *Backend) Close() error {
	return nil
}

// Load returns the last saved ledger.
func (b *Backend) Load() ([]core.LedgerEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]core.LedgerEntry, len(b.entries))
	copy(out, b.entries)
	return out, nil
}

// Save replaces the stored ledger.
func (b *Backend) Save(entries []core.LedgerEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = make([]core.LedgerEntry, len(entries))
	copy(b.entries, entries)
	return nil
}
