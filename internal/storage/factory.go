// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/driftworks/swaps/internal/config"
	"github.com/driftworks/swaps/internal/storage/file"
	"github.com/driftworks/swaps/internal/storage/gormstore"
	"github.com/driftworks/swaps/internal/storage/memory"
)

// NewBackend creates a storage backend based on configuration.
func NewBackend(cfg config.StorageConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "database":
		return gormstore.New(log), nil
	case "file":
		return file.New(cfg.File), nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
