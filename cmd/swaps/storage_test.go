package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftworks/swaps/internal/ledger"
	"github.com/driftworks/swaps/internal/storage/memory"
	"github.com/driftworks/swaps/pkg/core"
)

func setupLedgerGlobals(t *testing.T) *memory.Backend {
	t.Helper()

	prevLogger, prevCatalog, prevLedger, prevBackend := Logger, engineCatalog, swapLedger, storageBackend
	t.Cleanup(func() {
		Logger, engineCatalog, swapLedger, storageBackend = prevLogger, prevCatalog, prevLedger, prevBackend
	})

	Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := memory.New()
	require.NoError(t, backend.Save([]core.LedgerEntry{
		{VehicleKey: "car-1", CurrentEngineID: 7, Overrides: []core.EngineOverride{{EngineID: 7, TurboPressure: 1.0, FinalDrive: 3.7}}},
	}))
	storageBackend = backend
	swapLedger = ledger.NewLedger()
	return backend
}

func TestSaveLedgerSkippedWithoutCatalog(t *testing.T) {
	backend := setupLedgerGlobals(t)
	engineCatalog = nil

	// No catalog means no swap could have changed this session; the empty
	// in-memory ledger must not clobber the persisted one.
	require.NoError(t, saveLedger())

	got, err := backend.Load()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "car-1", got[0].VehicleKey)
}

func TestSaveLedgerWritesWithCatalog(t *testing.T) {
	backend := setupLedgerGlobals(t)
	engineCatalog = demoCatalog(false)

	swapLedger.Merge([]core.LedgerEntry{{VehicleKey: "car-2", CurrentEngineID: 9,
		Overrides: []core.EngineOverride{{EngineID: 9, TurboPressure: 1.1, FinalDrive: 4.1}}}})
	require.NoError(t, saveLedger())

	got, err := backend.Load()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "car-2", got[0].VehicleKey)
}
