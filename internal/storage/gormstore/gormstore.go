// internal/storage/gormstore/gormstore.go
package gormstore

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/driftworks/swaps/internal/database"
	"github.com/driftworks/swaps/internal/model"
	"github.com/driftworks/swaps/internal/model/convert"
	"github.com/driftworks/swaps/pkg/core"
)

// Backend persists the ledger through gorm: Postgres when reachable, SQLite
// otherwise. Each save rewrites the swap tables wholesale and appends one
// audit row per vehicle - the ledger is small, so simplicity beats deltas.
type Backend struct {
	manager *database.Manager
	log     zerolog.Logger
}

// New creates a database backend.
func New(log zerolog.Logger) *Backend {
	return &Backend{
		manager: database.NewManager(log),
		log:     log,
	}
}

// Init connects and migrates the schema.
func (b *Backend) Init() error {
	b.manager.SqliteFilePath = viper.GetString("db.sqlitePath")
	if err := b.manager.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	if err := b.manager.Setup(); err != nil {
		return fmt.Errorf("failed to set up schema: %w", err)
	}
	return nil
}

// Close dumps the in-memory SQLite fallback to disk and closes the pool.
func (b *Backend) Close() error {
	if b.manager.ShouldSaveLocal && b.manager.SqliteFilePath != "" {
		if err := b.manager.DumpMemoryToDisk(); err != nil {
			b.log.Error().Err(err).Msg("Failed to dump SQLite DB to disk")
		}
	}
	if b.manager.SqlDB != nil {
		return b.manager.SqlDB.Close()
	}
	return nil
}

// Load reads every persisted swap entry with its overrides.
func (b *Backend) Load() ([]core.LedgerEntry, error) {
	var rows []model.SwapEntry
	err := b.manager.DB.Preload("Overrides").Order("id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load swap entries: %w", err)
	}

	records := make([]core.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		records = append(records, convert.EntryToRecord(row))
	}
	return records, nil
}

// Save replaces the persisted ledger with the given records.
func (b *Backend) Save(entries []core.LedgerEntry) error {
	return b.manager.DB.Transaction(func(tx *gorm.DB) error {
		// Hard-delete the previous generation. A soft delete would keep the
		// old rows in the vehicle_key unique index and fail the re-insert.
		wipe := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped()
		if err := wipe.Delete(&model.SwapOverride{}).Error; err != nil {
			return fmt.Errorf("failed to clear swap overrides: %w", err)
		}
		if err := wipe.Delete(&model.SwapEntry{}).Error; err != nil {
			return fmt.Errorf("failed to clear swap entries: %w", err)
		}

		for _, rec := range entries {
			row := convert.EntryToModel(rec)
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to save entry for %s: %w", rec.VehicleKey, err)
			}
			if err := appendAudit(tx, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func appendAudit(tx *gorm.DB, rec core.LedgerEntry) error {
	details, err := json.Marshal(rec.Overrides)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}
	audit := model.SwapAudit{
		Time:       time.Now().UTC(),
		VehicleKey: rec.VehicleKey,
		EngineID:   rec.CurrentEngineID,
		Action:     "save",
		Details:    datatypes.JSON(details),
	}
	if err := tx.Create(&audit).Error; err != nil {
		return fmt.Errorf("failed to append audit row: %w", err)
	}
	return nil
}
