// Package sugardb provides an embedded SugarDB settings store for
// single-host deployments that want no external database.
package sugardb

import (
	"context"
	"fmt"
	"os"
	"sync"

	sdk "github.com/echovault/sugardb/sugardb"

	"github.com/slyguy/settings/engine/store"
	"github.com/slyguy/settings/pkg/logger"
)

const keySeparator = "\x1f"

// Store is a store.Backend on top of an embedded SugarDB instance.
type Store struct {
	db     *sdk.SugarDB
	owned  bool
	mu     sync.RWMutex
	closed bool
}

var _ store.Backend = (*Store)(nil)

// NewEmbedded starts an embedded SugarDB persisting under dataDir.
func NewEmbedded(ctx context.Context, dataDir string) (*Store, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("sugardb: data directory is required")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("sugardb: create data dir: %w", err)
	}
	conf := sdk.DefaultConfig()
	conf.DataDir = dataDir
	db, err := sdk.NewSugarDB(
		sdk.WithConfig(conf),
		sdk.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("sugardb: init failed: %w", err)
	}
	logger.FromContext(ctx).With("store_driver", "sugardb", "data_dir", dataDir).Debug("SugarDB settings store initialized")
	s, err := NewStore(db)
	if err != nil {
		return nil, err
	}
	s.owned = true
	return s, nil
}

// NewStore wraps an existing instance. The caller keeps ownership of db.
func NewStore(db *sdk.SugarDB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sugardb instance cannot be nil")
	}
	return &Store{db: db}, nil
}

func key(owner, id string) string {
	return owner + keySeparator + id
}

func (s *Store) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Get maps SugarDB's empty-string miss to store.ErrNotFound. Encoded
// values are never empty, so the mapping is unambiguous.
func (s *Store) Get(_ context.Context, owner, id string) ([]byte, error) {
	if s.isClosed() {
		return nil, store.ErrClosed
	}
	vals, err := s.db.MGet(key(owner, id))
	if err != nil {
		return nil, fmt.Errorf("sugardb: get setting: %w", err)
	}
	if len(vals) == 0 || vals[0] == "" {
		return nil, store.ErrNotFound
	}
	return []byte(vals[0]), nil
}

func (s *Store) Set(_ context.Context, owner, id string, value []byte) error {
	if s.isClosed() {
		return store.ErrClosed
	}
	if len(value) == 0 {
		return fmt.Errorf("sugardb: refusing to store an empty value for %s/%s", owner, id)
	}
	if _, _, err := s.db.Set(key(owner, id), string(value), sdk.SETOptions{}); err != nil {
		return fmt.Errorf("sugardb: set setting: %w", err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, owner, id string) error {
	if s.isClosed() {
		return store.ErrClosed
	}
	if _, err := s.db.Del(key(owner, id)); err != nil {
		return fmt.Errorf("sugardb: delete setting: %w", err)
	}
	return nil
}

// Close shuts the instance down when the store started it.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.owned {
		s.db.ShutDown()
		logger.FromContext(ctx).Debug("SugarDB settings store shut down")
	}
	return nil
}
