package main

import (
	"github.com/driftworks/swaps/internal/config"
	"github.com/driftworks/swaps/internal/storage"
)

// initStorage creates the configured backend and replays persisted swaps into
// the ledger. A failure here degrades to a memoryless session rather than
// blocking startup.
func initStorage() error {
	storageCfg := config.GetStorageConfig()

	backend, err := storage.NewBackend(storageCfg, DBLogger)
	if err != nil {
		Logger.Error("Failed to create storage backend", "error", err, "type", storageCfg.Type)
		return err
	}
	if err := backend.Init(); err != nil {
		Logger.Error("Failed to initialize storage backend", "error", err, "type", storageCfg.Type)
		return err
	}
	storageBackend = backend
	Logger.Info("Storage backend initialized", "type", storageCfg.Type)

	entries, err := storageBackend.Load()
	if err != nil {
		Logger.Error("Failed to load persisted swaps", "error", err)
		return err
	}
	swapLedger.Merge(entries)
	Logger.Info("Persisted swaps loaded", "vehicles", len(entries))
	return nil
}

// saveLedger writes the full ledger through the backend. Skipped when the
// catalog never loaded: the session could not have changed any swap, and an
// empty ledger must not overwrite the persisted one.
func saveLedger() error {
	if storageBackend == nil || engineCatalog == nil {
		return nil
	}
	entries := swapLedger.Snapshot()
	if err := storageBackend.Save(entries); err != nil {
		return err
	}
	Logger.Info("Ledger saved", "vehicles", len(entries))
	return nil
}
