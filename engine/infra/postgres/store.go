package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slyguy/settings/engine/store"
	"github.com/slyguy/settings/pkg/logger"
)

const (
	settingsTable      = "settings"
	defaultMaxConns    = 4
	defaultPingTimeout = 3 * time.Second
	upsertSuffix       = "ON CONFLICT (owner, id) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at"
)

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store is a store.Backend persisted in PostgreSQL.
type Store struct {
	db     DB
	closed atomic.Bool
}

var _ store.Backend = (*Store)(nil)

// NewStore migrates the schema, opens a pgx pool and verifies the connection.
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil || cfg.ConnString == "" {
		return nil, fmt.Errorf("postgres: connection string is required")
	}
	if err := ApplyMigrations(ctx, cfg.ConnString); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	poolCfg.MaxConns = clampMaxConns(cfg.MaxConns)
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: new pool: %w", err)
	}
	pingTimeout := defaultPingTimeout
	if cfg.PingTimeout > 0 {
		pingTimeout = cfg.PingTimeout
	}
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	logger.FromContext(ctx).Debug("Postgres settings store opened", "max_conns", poolCfg.MaxConns)
	return NewStoreWithDB(pool), nil
}

// NewStoreWithDB wraps an existing pool. The schema must already exist.
func NewStoreWithDB(db DB) *Store {
	return &Store{db: db}
}

func clampMaxConns(value int) int32 {
	if value <= 0 {
		return defaultMaxConns
	}
	if value > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(value)
}

func (s *Store) Get(ctx context.Context, owner, id string) ([]byte, error) {
	if s.closed.Load() {
		return nil, store.ErrClosed
	}
	query, args, err := squirrel.Select("value").
		From(settingsTable).
		Where("owner = ?", owner).
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres: build get query: %w", err)
	}
	var value []byte
	if err := s.db.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: get setting: %w", err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, owner, id string, value []byte) error {
	if s.closed.Load() {
		return store.ErrClosed
	}
	query, args, err := squirrel.Insert(settingsTable).
		Columns("owner", "id", "value", "updated_at").
		Values(owner, id, value, squirrel.Expr("now()")).
		Suffix(upsertSuffix).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("postgres: build set query: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("postgres: set setting: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, owner, id string) error {
	if s.closed.Load() {
		return store.ErrClosed
	}
	query, args, err := squirrel.Delete(settingsTable).
		Where("owner = ?", owner).
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("postgres: build delete query: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("postgres: delete setting: %w", err)
	}
	return nil
}

// Close shuts down the connection pool.
func (s *Store) Close(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.db.Close()
	logger.FromContext(ctx).Debug("Postgres settings store closed")
	return nil
}
