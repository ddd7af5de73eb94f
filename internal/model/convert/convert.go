// Package convert maps between the in-memory ledger records and the gorm
// persistence models. The two sides stay separate: core types carry no gorm
// baggage and the models carry no behavior.
package convert

import (
	"sort"

	"github.com/driftworks/swaps/internal/model"
	"github.com/driftworks/swaps/pkg/core"
)

// EntryToModel converts a ledger record to its database row set.
func EntryToModel(rec core.LedgerEntry) model.SwapEntry {
	entry := model.SwapEntry{
		VehicleKey:      rec.VehicleKey,
		CurrentEngineID: rec.CurrentEngineID,
		Overrides:       make([]model.SwapOverride, 0, len(rec.Overrides)),
	}
	for i, ov := range rec.Overrides {
		entry.Overrides = append(entry.Overrides, model.SwapOverride{
			EngineID:      ov.EngineID,
			TurboPressure: ov.TurboPressure,
			FinalDrive:    ov.FinalDrive,
			Position:      i,
		})
	}
	return entry
}

// EntryToRecord converts a database row set back to a ledger record,
// restoring insertion order from the Position column.
func EntryToRecord(entry model.SwapEntry) core.LedgerEntry {
	overrides := make([]model.SwapOverride, len(entry.Overrides))
	copy(overrides, entry.Overrides)
	sort.Slice(overrides, func(i, j int) bool {
		return overrides[i].Position < overrides[j].Position
	})

	rec := core.LedgerEntry{
		VehicleKey:      entry.VehicleKey,
		CurrentEngineID: entry.CurrentEngineID,
		Overrides:       make([]core.EngineOverride, 0, len(overrides)),
	}
	for _, ov := range overrides {
		rec.Overrides = append(rec.Overrides, core.EngineOverride{
			EngineID:      ov.EngineID,
			TurboPressure: ov.TurboPressure,
			FinalDrive:    ov.FinalDrive,
		})
	}
	return rec
}
