// Package memory provides a process-local settings store. Values do not
// survive a restart.
package memory

import (
	"context"
	"sync"

	"github.com/slyguy/settings/engine/store"
)

// Store is a mutex-guarded map implementing store.Backend.
type Store struct {
	mu     sync.RWMutex
	data   map[store.Key][]byte
	closed bool
}

var _ store.Backend = (*Store)(nil)

func NewStore() *Store {
	return &Store{data: make(map[store.Key][]byte)}
}

func (s *Store) Get(_ context.Context, owner, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, store.ErrClosed
	}
	v, ok := s.data[store.Key{Owner: owner, ID: id}]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Set(_ context.Context, owner, id string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	s.data[store.Key{Owner: owner, ID: id}] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Delete(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	delete(s.data, store.Key{Owner: owner, ID: id})
	return nil
}

// Len reports the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *Store) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
