package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/slyguy/settings/engine/store"
	"github.com/slyguy/settings/pkg/logger"
)

const (
	memoryPath         = ":memory:"
	defaultBusyTimeout = 5 * time.Second
	defaultMaxOpen     = 4
)

// Store is a store.Backend persisted in a single SQLite table.
type Store struct {
	db     *sql.DB
	path   string
	closed atomic.Bool
}

var _ store.Backend = (*Store)(nil)

// NewStore opens (creating if needed) the database at cfg.Path and applies migrations.
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil || cfg.Path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	if cfg.Path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", buildDSN(cfg.Path, cfg.BusyTimeout))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}
	configurePool(db, cfg)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping database: %w", err)
	}
	if err := ApplyMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	logger.FromContext(ctx).Debug("SQLite settings store opened", "path", cfg.Path)
	return &Store{db: db, path: cfg.Path}, nil
}

// buildDSN renders a modernc DSN with the pragmas every connection needs.
func buildDSN(path string, busyTimeout time.Duration) string {
	if busyTimeout <= 0 {
		busyTimeout = defaultBusyTimeout
	}
	pragmas := []string{fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeout.Milliseconds())}
	if path == memoryPath {
		return "file::memory:?" + strings.Join(pragmas, "&")
	}
	pragmas = append(pragmas, "_pragma=journal_mode(WAL)", "_pragma=synchronous(NORMAL)")
	return "file:" + path + "?" + strings.Join(pragmas, "&")
}

func configurePool(db *sql.DB, cfg *Config) {
	// Every :memory: connection is a separate database.
	if cfg.Path == memoryPath {
		db.SetMaxOpenConns(1)
		return
	}
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpen
	}
	db.SetMaxOpenConns(maxOpen)
}

// DB exposes the underlying handle for driver-local usage.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Get(ctx context.Context, owner, id string) ([]byte, error) {
	if s.closed.Load() {
		return nil, store.ErrClosed
	}
	const q = `SELECT value FROM settings WHERE owner = ? AND id = ?`
	var value string
	if err := s.db.QueryRowContext(ctx, q, owner, id).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("sqlite: get setting: %w", err)
	}
	return []byte(value), nil
}

func (s *Store) Set(ctx context.Context, owner, id string, value []byte) error {
	if s.closed.Load() {
		return store.ErrClosed
	}
	const q = `INSERT INTO settings (owner, id, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (owner, id) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, q, owner, id, string(value), now); err != nil {
		return fmt.Errorf("sqlite: set setting: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, owner, id string) error {
	if s.closed.Load() {
		return store.ErrClosed
	}
	const q = `DELETE FROM settings WHERE owner = ? AND id = ?`
	if _, err := s.db.ExecContext(ctx, q, owner, id); err != nil {
		return fmt.Errorf("sqlite: delete setting: %w", err)
	}
	return nil
}

// Close closes the database. Subsequent calls are no-ops.
func (s *Store) Close(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("sqlite: close database: %w", err)
	}
	logger.FromContext(ctx).Debug("SQLite settings store closed", "path", s.path)
	return nil
}
