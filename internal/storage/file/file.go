// internal/storage/file/file.go
package file

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/driftworks/swaps/internal/config"
	"github.com/driftworks/swaps/internal/model"
	"github.com/driftworks/swaps/pkg/core"
)

// ledgerDocument is the root JSON structure of a save file.
type ledgerDocument struct {
	SchemaVersion int                `json:"schemaVersion"`
	SavedAt       time.Time          `json:"savedAt"`
	Entries       []core.LedgerEntry `json:"entries"`
}

// Backend persists the ledger as a single JSON document, optionally gzipped.
// Writes go through a temp file and rename so a crash mid-save never leaves a
// truncated ledger behind.
type Backend struct {
	cfg config.FileConfig
}

// New creates a file backend.
func New(cfg config.FileConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init ensures the save directory exists.
func (b *Backend) Init() error {
	dir := filepath.Dir(b.cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create save directory: %w", err)
	}
	return nil
}

// Close cleans up resources.
func (b *Backend) Close() error {
	return nil
}

// Load reads the persisted ledger. A missing file is an empty ledger, not an
// error; a file written by a different schema version is rejected.
func (b *Backend) Load() ([]core.LedgerEntry, error) {
	f, err := os.Open(b.cfg.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open save file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if b.cfg.Compress {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	var doc ledgerDocument
	if err := json.NewDecoder(reader).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode save file: %w", err)
	}
	if doc.SchemaVersion != model.SchemaVersion {
		return nil, fmt.Errorf("save file schema version %d, expected %d",
			doc.SchemaVersion, model.SchemaVersion)
	}

	return doc.Entries, nil
}

// Save writes the whole ledger, replacing the previous file.
func (b *Backend) Save(entries []core.LedgerEntry) error {
	doc := ledgerDocument{
		SchemaVersion: model.SchemaVersion,
		SavedAt:       time.Now().UTC(),
		Entries:       entries,
	}

	tmpPath := b.cfg.Path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create save file: %w", err)
	}

	var writer io.Writer = f
	var gz *gzip.Writer
	if b.cfg.Compress {
		gz = gzip.NewWriter(f)
		writer = gz
	}

	if err := json.NewEncoder(writer).Encode(&doc); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to flush gzip stream: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close save file: %w", err)
	}

	if err := os.Rename(tmpPath, b.cfg.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace save file: %w", err)
	}
	return nil
}
