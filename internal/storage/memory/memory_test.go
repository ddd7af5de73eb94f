package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftworks/swaps/pkg/core"
)

func TestSaveAndLoad(t *testing.T) {
	b := New()
	require.NoError(t, b.Init())
	defer b.Close()

	entries := []core.LedgerEntry{
		{VehicleKey: "car-1", CurrentEngineID: 7, Overrides: []core.EngineOverride{
			{EngineID: 7, TurboPressure: 1.2, FinalDrive: 3.7},
		}},
	}
	require.NoError(t, b.Save(entries))

	got, err := b.Load()
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	// Mutating the caller's slice must not leak into the stored copy.
	entries[0].VehicleKey = "mutated"
	got, err = b.Load()
	require.NoError(t, err)
	assert.Equal(t, "car-1", got[0].VehicleKey)
}

func TestLoadEmpty(t *testing.T) {
	b := New()
	got, err := b.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}
