package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/kozaktomas/fras/internal/config"
)

// Backend names
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMariaDB  = "mariadb"
)

// OpenFunc constructs a Store from configuration.
type OpenFunc func(cfg *config.Config) (Store, error)

var (
	backends   = make(map[string]OpenFunc)
	backendsMu sync.RWMutex
)

// RegisterBackend registers a store constructor under a backend name.
// Backend packages are registered by the caller to avoid import cycles.
func RegisterBackend(name string, open OpenFunc) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[name] = open
}

// SelectBackend returns the backend name the configuration asks for:
// PostgreSQL when DATABASE_URL is set, then MariaDB when MARIADB_DSN is set,
// SQLite otherwise.
func SelectBackend(cfg *config.Config) string {
	if cfg.Database.URL != "" {
		return BackendPostgres
	}
	if cfg.Database.MariaDBDSN != "" {
		return BackendMariaDB
	}
	return BackendSQLite
}

// Open creates the configured store and ensures its schema exists.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	name := SelectBackend(cfg)

	backendsMu.RLock()
	open, ok := backends[name]
	backendsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s backend not registered", name)
	}

	store, err := open(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", name, err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("initializing %s store: %w", name, err)
	}
	return store, nil
}
