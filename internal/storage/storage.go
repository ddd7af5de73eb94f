// internal/storage/storage.go
package storage

import "github.com/driftworks/swaps/pkg/core"

// Backend is the interface all ledger persistence implementations must satisfy.
// Load runs once at startup, Save at shutdown and on explicit flushes; the
// in-memory ledger is the source of truth in between.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Ledger persistence
	Load() ([]core.LedgerEntry, error)
	Save(entries []core.LedgerEntry) error
}
