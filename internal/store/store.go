// Package store provides the durable key-value slot that holds the
// serialized session between runs.
//
// A Store owns exactly one slot. Backends:
//   - FileStore: a single JSON file written atomically with 0600 permissions
//   - SQLiteStore: one row of a kv table in a SQLite database
//   - MemoryStore: process memory, for tests
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultKey is the slot name used by every backend.
const DefaultKey = "authState"

// Store defines the interface for the persisted session slot.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Read returns the slot contents, or nil with no error when the slot is empty.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the slot contents.
	Write(ctx context.Context, data []byte) error

	// Purge removes the slot. Purging an empty slot is not an error.
	Purge(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	Path    string
	Key     string
}

// DefaultDir returns ~/.authdemo, falling back to ./.authdemo when the home
// directory cannot be resolved.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".authdemo"
	}
	return filepath.Join(home, ".authdemo")
}

// DefaultPath returns the default slot location for a backend.
func DefaultPath(backend string) string {
	switch backend {
	case BackendSQLite:
		return filepath.Join(DefaultDir(), "authdemo.db")
	default:
		return filepath.Join(DefaultDir(), DefaultKey+".json")
	}
}

// Open creates the configured backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath(cfg.Backend)
	}

	switch cfg.Backend {
	case BackendFile, "":
		return NewFileStore(cfg.Path), nil
	case BackendSQLite:
		return OpenSQLite(ctx, cfg.Path, cfg.Key)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (supported: file, sqlite, memory)", cfg.Backend)
	}
}
