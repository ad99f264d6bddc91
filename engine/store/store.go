package store

import (
	"context"
	"errors"
)

// Canonical, backend-neutral errors backends must return.
var (
	ErrNotFound = errors.New("store: not found")
	ErrClosed   = errors.New("store: closed")
)

// Backend is the persistence mechanism behind the Resolver. Keys are
// (owner, id) pairs and values are opaque encoded bytes.
type Backend interface {
	// Get returns ErrNotFound when no entry exists for the exact key.
	Get(ctx context.Context, owner, id string) ([]byte, error)
	// Set upserts the entry for the exact key.
	Set(ctx context.Context, owner, id string, value []byte) error
	// Delete removes the entry for the exact key. Missing entries are not an error.
	Delete(ctx context.Context, owner, id string) error
	Close(ctx context.Context) error
}

// Key identifies one stored entry.
type Key struct {
	Owner string
	ID    string
}

func (k Key) String() string {
	return k.Owner + "/" + k.ID
}
