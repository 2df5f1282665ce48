// Package sqlite implements the descriptor store on a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kozaktomas/fras/internal/config"
	"github.com/kozaktomas/fras/internal/database"
	"github.com/mattn/go-sqlite3"
)

const schema = `
	CREATE TABLE IF NOT EXISTS face_features (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		descriptor BLOB NOT NULL
	)
`

// Store is a database.Store backed by a SQLite file.
// The file, its parent directory and the table are created by the first
// Append. Reads against a missing file see an empty store.
type Store struct {
	path        string
	busyTimeout time.Duration

	mu          sync.Mutex
	db          *sql.DB
	schemaReady bool
}

// New creates a store for the given file path without touching the filesystem.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite store path is required")
	}
	return &Store{
		path:        path,
		busyTimeout: 5 * time.Second,
	}, nil
}

// Open is the database.OpenFunc for the SQLite backend.
func Open(cfg *config.Config) (database.Store, error) {
	return New(cfg.Store.Path)
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// open returns the shared connection pool, opening it on first use. With
// create false and no store file yet it returns nil and leaves the
// filesystem alone.
func (s *Store) open(ctx context.Context, create bool) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	if !create {
		_, err := os.Stat(s.path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: stat %s: %v", database.ErrStoreUnavailable, s.path, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating store directory: %v", database.ErrStoreUnavailable, err)
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=%d",
		s.path,
		int(s.busyTimeout.Milliseconds()),
	)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", database.ErrStoreUnavailable, s.path, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", database.ErrStoreUnavailable, s.path, err)
	}

	s.db = db
	return db, nil
}

func (s *Store) createSchema(ctx context.Context, db *sql.DB) error {
	s.mu.Lock()
	ready := s.schemaReady
	s.mu.Unlock()
	if ready {
		return nil
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return classify("create face_features table", err)
	}

	s.mu.Lock()
	s.schemaReady = true
	s.mu.Unlock()
	return nil
}

// classify marks lock and open failures as store unavailability.
func classify(op string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrCantOpen, sqlite3.ErrReadonly, sqlite3.ErrIoErr:
			return fmt.Errorf("%w: %s: %v", database.ErrStoreUnavailable, op, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// EnsureSchema creates the face_features table in an existing store file.
// A store without a file stays untouched until the first Append.
func (s *Store) EnsureSchema(ctx context.Context) error {
	db, err := s.open(ctx, false)
	if err != nil || db == nil {
		return err
	}
	return s.createSchema(ctx, db)
}

// Close closes the connection pool if it was opened
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.schemaReady = false
	if err != nil {
		return fmt.Errorf("closing database connection: %w", err)
	}
	return nil
}

var (
	_ database.Store       = (*Store)(nil)
	_ database.LabelLister = (*Store)(nil)
)
