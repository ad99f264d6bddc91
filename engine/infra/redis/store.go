// Package redis stores settings in Redis so plugin processes on different
// hosts can share one namespace tree.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/slyguy/settings/engine/store"
	"github.com/slyguy/settings/pkg/logger"
)

const (
	defaultPrefix      = "settings"
	defaultPingTimeout = 5 * time.Second
)

// Config holds Redis connection settings for the driver.
type Config struct {
	Addr        string
	Password    string
	DB          int
	Prefix      string
	PingTimeout time.Duration
}

// Client is the subset of redis.UniversalClient the store needs.
type Client interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// Store is a store.Backend keyed as "<prefix>:<owner>:<id>".
type Store struct {
	client Client
	prefix string
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

var _ store.Backend = (*Store)(nil)

// NewStore connects to Redis and verifies the connection.
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil || cfg.Addr == "" {
		return nil, fmt.Errorf("redis: address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	if err := pingRedis(ctx, client, timeout); err != nil {
		client.Close()
		return nil, err
	}
	logger.FromContext(ctx).With("store_driver", "redis", "addr", cfg.Addr, "db", cfg.DB).
		Debug("Redis settings store connected")
	return NewStoreWithClient(client, cfg.Prefix), nil
}

// NewStoreWithClient wraps an existing client.
func NewStoreWithClient(client Client, prefix string) *Store {
	prefix = strings.TrimSuffix(prefix, ":")
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func pingRedis(ctx context.Context, client Client, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping (timeout=%s): %w", timeout, err)
	}
	return nil
}

func (s *Store) key(owner, id string) string {
	return s.prefix + ":" + owner + ":" + id
}

func (s *Store) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Store) Get(ctx context.Context, owner, id string) ([]byte, error) {
	if s.isClosed() {
		return nil, store.ErrClosed
	}
	value, err := s.client.Get(ctx, s.key(owner, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get setting: %w", err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, owner, id string, value []byte) error {
	if s.isClosed() {
		return store.ErrClosed
	}
	if err := s.client.Set(ctx, s.key(owner, id), value, 0).Err(); err != nil {
		return fmt.Errorf("redis: set setting: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, owner, id string) error {
	if s.isClosed() {
		return store.ErrClosed
	}
	if err := s.client.Del(ctx, s.key(owner, id)).Err(); err != nil {
		return fmt.Errorf("redis: delete setting: %w", err)
	}
	return nil
}

// Close shuts down the client. Safe to call more than once.
func (s *Store) Close(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		if cerr := s.client.Close(); cerr != nil {
			err = fmt.Errorf("redis: close client: %w", cerr)
			return
		}
		logger.FromContext(ctx).Debug("Redis settings store closed")
	})
	return err
}
