// Package ledger keeps the per-vehicle swap records: which engine overrides a
// vehicle has configured and which one is current. Entries are created lazily
// on first contact with a vehicle and mutated in place; the whole ledger is
// persisted at shutdown through a storage backend.
package ledger

import (
	"sync"

	"github.com/driftworks/swaps/pkg/core"
)

// Entry is one vehicle's swap record. Overrides are keyed by engine ID, so
// "at most one override per engine" holds structurally; insertion order is
// kept for stable persistence and display.
type Entry struct {
	vehicleKey string
	overrides  map[int]core.EngineOverride
	order      []int
	currentID  int
}

func newEntry(vehicleKey string) *Entry {
	return &Entry{
		vehicleKey: vehicleKey,
		overrides:  make(map[int]core.EngineOverride),
		currentID:  core.StockEngineID,
	}
}

// VehicleKey returns the vehicle instance key this entry belongs to.
func (e *Entry) VehicleKey() string {
	return e.vehicleKey
}

// Current returns the current override, if any. No current override means the
// vehicle runs stock.
func (e *Entry) Current() (core.EngineOverride, bool) {
	if e.currentID == core.StockEngineID {
		return core.EngineOverride{}, false
	}
	ov, ok := e.overrides[e.currentID]
	return ov, ok
}

// CurrentID returns the current engine ID, StockEngineID when stock.
func (e *Entry) CurrentID() int {
	return e.currentID
}

// Get returns the override for an engine ID, if present.
func (e *Entry) Get(engineID int) (core.EngineOverride, bool) {
	ov, ok := e.overrides[engineID]
	return ov, ok
}

// SetCurrent designates an existing override as current. It never creates an
// override: if none exists for engineID the call reports false and leaves the
// entry unchanged. Passing StockEngineID clears the designator.
func (e *Entry) SetCurrent(engineID int) bool {
	if engineID == core.StockEngineID {
		e.currentID = core.StockEngineID
		return true
	}
	if _, ok := e.overrides[engineID]; !ok {
		return false
	}
	e.currentID = engineID
	return true
}

// AddOverride inserts an override. The reserved stock ID is never stored.
// Inserting an engine ID that is already present replaces its tuning.
func (e *Entry) AddOverride(ov core.EngineOverride) {
	if ov.EngineID == core.StockEngineID {
		return
	}
	if _, ok := e.overrides[ov.EngineID]; !ok {
		e.order = append(e.order, ov.EngineID)
	}
	e.overrides[ov.EngineID] = ov
}

// RemoveOverride deletes the override for an engine ID. If it was current,
// the entry reverts to stock, so the current designator can never dangle.
func (e *Entry) RemoveOverride(engineID int) {
	if _, ok := e.overrides[engineID]; !ok {
		return
	}
	delete(e.overrides, engineID)
	for i, id := range e.order {
		if id == engineID {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	if e.currentID == engineID {
		e.currentID = core.StockEngineID
	}
}

// Overrides returns the overrides in insertion order.
func (e *Entry) Overrides() []core.EngineOverride {
	out := make([]core.EngineOverride, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.overrides[id])
	}
	return out
}

// Snapshot converts the entry to its persistence value record.
func (e *Entry) Snapshot() core.LedgerEntry {
	return core.LedgerEntry{
		VehicleKey:      e.vehicleKey,
		CurrentEngineID: e.currentID,
		Overrides:       e.Overrides(),
	}
}

// Ledger maps vehicle instance keys to entries. Exactly one entry exists per
// key; lookups create entries on demand.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]*Entry
	order   []string
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		entries: make(map[string]*Entry),
	}
}

// EntryFor returns the entry for a vehicle key, creating it if absent. The
// handle stays valid for the life of the ledger - entries are never removed.
func (l *Ledger) EntryFor(vehicleKey string) *Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[vehicleKey]; ok {
		return e
	}
	e := newEntry(vehicleKey)
	l.entries[vehicleKey] = e
	l.order = append(l.order, vehicleKey)
	return e
}

// Lookup returns the entry for a vehicle key without creating one.
func (l *Ledger) Lookup(vehicleKey string) (*Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[vehicleKey]
	return e, ok
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Snapshot converts the whole ledger to persistence value records, one per
// vehicle key, in creation order.
func (l *Ledger) Snapshot() []core.LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]core.LedgerEntry, 0, len(l.order))
	for _, key := range l.order {
		out = append(out, l.entries[key].Snapshot())
	}
	return out
}

// Merge loads persisted records into the ledger. Records for an already
// present key replace that entry's overrides wholesale. Stock-ID overrides
// are dropped and a current designator pointing at a missing override is
// cleared rather than trusted.
func (l *Ledger) Merge(records []core.LedgerEntry) {
	for _, rec := range records {
		e := l.EntryFor(rec.VehicleKey)
		e.overrides = make(map[int]core.EngineOverride, len(rec.Overrides))
		e.order = e.order[:0]
		for _, ov := range rec.Overrides {
			e.AddOverride(ov)
		}
		e.currentID = core.StockEngineID
		e.SetCurrent(rec.CurrentEngineID)
	}
}
