// Package state holds the last known snapshot per entity. Writes are
// last-write-wins: a newer message replaces the stored snapshot
// unconditionally, and entities are never deleted.
package state

import (
	"sort"
	"sync"
)

// Store maps entity identifiers to their latest snapshot. It is safe for
// concurrent use; updates are linearizable per entity with no ordering
// guarantee across entities.
type Store[T any] struct {
	mu   sync.RWMutex
	data map[string]T
}

// New returns an empty store.
func New[T any]() *Store[T] {
	return &Store[T]{data: map[string]T{}}
}

// Upsert replaces the snapshot for id and reports whether the entity was
// previously unknown.
func (s *Store[T]) Upsert(id string, snapshot T) (isNew bool) {
	s.mu.Lock()
	_, existed := s.data[id]
	s.data[id] = snapshot
	s.mu.Unlock()
	return !existed
}

// Get returns the latest snapshot for id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	snapshot, ok := s.data[id]
	s.mu.RUnlock()
	return snapshot, ok
}

// Snapshot returns a point-in-time copy of all entities, safe to hand to a
// consumer without holding the store lock.
func (s *Store[T]) Snapshot() map[string]T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]T, len(s.data))
	for id, snapshot := range s.data {
		out[id] = snapshot
	}
	return out
}

// List returns all snapshots sorted by entity ID.
func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.data[id])
	}
	return out
}

// Len returns the number of tracked entities.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
