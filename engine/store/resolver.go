package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/slyguy/settings/pkg/logger"
)

// DefaultCacheSize bounds the lookup cache when no size is configured.
const DefaultCacheSize = 512

type entry struct {
	raw   []byte
	found bool
}

// Resolver maps (owner, id) to stored values, falling back to the common
// owner for inheriting lookups. Lookups, including misses, are cached until
// Reset.
type Resolver struct {
	backend   Backend
	common    string
	cacheSize int
	cache     *lru.Cache[Key, entry]
	metrics   *Metrics
}

type Option func(*Resolver)

// WithCacheSize sets how many (owner, id) lookups are kept between resets.
func WithCacheSize(size int) Option {
	return func(r *Resolver) {
		r.cacheSize = size
	}
}

// WithMetrics records lookups and writes on m.
func WithMetrics(m *Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// NewResolver creates a resolver over backend. common is the shared
// namespace inheriting lookups fall back to.
func NewResolver(backend Backend, common string, opts ...Option) (*Resolver, error) {
	if backend == nil {
		return nil, fmt.Errorf("store: backend is required")
	}
	if common == "" {
		return nil, fmt.Errorf("store: common owner is required")
	}
	r := &Resolver{
		backend:   backend,
		common:    common,
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cacheSize <= 0 {
		r.cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[Key, entry](r.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("store: create cache: %w", err)
	}
	r.cache = cache
	return r, nil
}

// Common returns the shared namespace.
func (r *Resolver) Common() string {
	return r.common
}

// Get looks up (owner, id). On a miss with inherit set, the common owner's
// entry is returned instead, found or not. Backend failures are logged and
// reported as NotFound.
func (r *Resolver) Get(ctx context.Context, owner, id string, inherit bool) Result {
	res := r.lookup(ctx, Key{Owner: owner, ID: id})
	if res.IsFound() || !inherit || owner == r.common {
		return res
	}
	return r.lookup(ctx, Key{Owner: r.common, ID: id})
}

// Set upserts the value for exactly (owner, id).
func (r *Resolver) Set(ctx context.Context, owner, id string, value any) error {
	key := Key{Owner: owner, ID: id}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	err = r.backend.Set(ctx, owner, id, raw)
	r.metrics.write(opSet, err)
	if err != nil {
		r.cache.Remove(key)
		return fmt.Errorf("store: set %s: %w", key, err)
	}
	r.cache.Add(key, entry{raw: raw, found: true})
	return nil
}

// Delete removes the entry for exactly (owner, id).
func (r *Resolver) Delete(ctx context.Context, owner, id string) error {
	key := Key{Owner: owner, ID: id}
	err := r.backend.Delete(ctx, owner, id)
	r.metrics.write(opDelete, err)
	if err != nil {
		r.cache.Remove(key)
		return fmt.Errorf("store: delete %s: %w", key, err)
	}
	r.cache.Add(key, entry{})
	return nil
}

// Reset drops every cached lookup. Stored data is untouched.
func (r *Resolver) Reset() {
	r.cache.Purge()
	r.metrics.reset()
}

// Close closes the backend.
func (r *Resolver) Close(ctx context.Context) error {
	r.cache.Purge()
	return r.backend.Close(ctx)
}

func (r *Resolver) lookup(ctx context.Context, key Key) Result {
	if e, ok := r.cache.Get(key); ok {
		r.metrics.lookup(hitOrMiss(e.found), sourceCache)
		return r.decode(ctx, key, e)
	}
	raw, err := r.backend.Get(ctx, key.Owner, key.ID)
	switch {
	case errors.Is(err, ErrNotFound):
		r.metrics.lookup(lookupMiss, sourceStore)
		r.cache.Add(key, entry{})
		return NotFound(key.Owner)
	case err != nil:
		r.metrics.lookup(lookupError, sourceStore)
		logger.FromContext(ctx).Warn("Failed to read setting", "owner", key.Owner, "id", key.ID, "error", err)
		return NotFound(key.Owner)
	}
	r.metrics.lookup(lookupHit, sourceStore)
	e := entry{raw: raw, found: true}
	r.cache.Add(key, e)
	return r.decode(ctx, key, e)
}

func (r *Resolver) decode(ctx context.Context, key Key, e entry) Result {
	if !e.found {
		return NotFound(key.Owner)
	}
	var value any
	if err := json.Unmarshal(e.raw, &value); err != nil {
		logger.FromContext(ctx).Warn("Ignoring undecodable setting", "owner", key.Owner, "id", key.ID, "error", err)
		return NotFound(key.Owner)
	}
	return Found(key.Owner, value)
}

func hitOrMiss(found bool) string {
	if found {
		return lookupHit
	}
	return lookupMiss
}
