package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/njchilds90/termwise"
	"github.com/njchilds90/termwise/pkg/ports"
)

// Store implements ports.SessionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*termwise.Session
	mu   sync.RWMutex
}

var _ ports.SessionStore = (*Store)(nil)

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*termwise.Session),
	}
}

// Save keeps a copy of s, so later changes by the caller are not seen.
func (s *Store) Save(ctx context.Context, sess *termwise.Session) error {
	copied := sess.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sess.ID] = copied
	return nil
}

// Load returns a copy of the stored session.
func (s *Store) Load(ctx context.Context, id string) (*termwise.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.data[id]
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored session IDs in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
