// Package memory holds the in-process snapshot of the remote record
// collection. The snapshot is single-owner data: the refresh worker
// replaces it wholesale, readers get copies, and every derived view is
// recomputed from it rather than mutated in place.
package memory

import (
	"sync"
	"time"

	"expensetracker/internal/core"
)

type Store struct {
	mu        sync.RWMutex
	records   []core.Record
	fetchedAt time.Time
}

func New() *Store {
	return &Store{}
}

// NewSeeded is a convenience for tests and fixtures.
func NewSeeded(records []core.Record) *Store {
	s := New()
	s.Replace(records)
	return s
}

// Records returns a copy of the current collection, preserving order.
func (s *Store) Records() []core.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Replace swaps in a freshly fetched collection.
func (s *Store) Replace(records []core.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]core.Record(nil), records...)
	s.fetchedAt = time.Now()
}

// Len reports the current collection size without copying it.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// FetchedAt reports when the snapshot was last replaced; zero until the
// first successful fetch. Used by the readiness probe.
func (s *Store) FetchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchedAt
}
