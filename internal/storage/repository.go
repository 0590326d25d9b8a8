// Package storage contains the storage-agnostic warehouse contracts plus a
// backend registry. The lake is the primary destination for the star
// schema; the repositories here load the same tables into a relational
// warehouse when a run configures a db sink.
package storage

import (
	"context"
	"fmt"
	"sync"
)

// Config selects and configures a repository backend.
type Config struct {
	// Kind is the backend name, e.g. "postgres" or "sqlite".
	Kind string
	// DSN is the backend connection string.
	DSN string
	// BatchSize caps rows per CopyFrom call made by the loader. Zero
	// means DefaultBatchSize.
	BatchSize int
}

// DefaultBatchSize is used when Config.BatchSize is zero.
const DefaultBatchSize = 1000

// Repository is the minimal warehouse contract the pipeline needs.
// A run replaces each table wholesale: EnsureTable, Truncate, then one or
// more CopyFrom batches.
type Repository interface {
	// EnsureTable creates the table when absent.
	EnsureTable(ctx context.Context, spec TableSpec) error
	// Truncate removes all rows ahead of a fresh load.
	Truncate(ctx context.Context, table string) error
	// CopyFrom bulk-inserts rows aligned to the column order and returns
	// the number of rows inserted.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
	// Close releases the underlying connections.
	Close() error
}

// Factory opens a Repository for a Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for a backend kind. It is
// called from backend packages' init() functions; importing storage/all
// makes every built-in backend available.
func Register(kind string, fn Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = fn
}

// New opens a Repository for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	fn, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: no backend registered for kind %q", cfg.Kind)
	}
	return fn(ctx, cfg)
}
