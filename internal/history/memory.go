package history

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore process local store, slice ordered by CreatedAt, oldest first.
type MemoryStore struct {
	records    []Record
	maxRecords int
	now        func() time.Time
	mu         sync.RWMutex
}

// NewMemoryStore maxRecords <= 0 keeps everything.
func NewMemoryStore(maxRecords int) *MemoryStore {
	return &MemoryStore{
		records:    make([]Record, 0),
		maxRecords: maxRecords,
		now:        time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, r Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r = stamp(r, s.now)

	// records mostly arrive in order, search from the newest end
	i := len(s.records)
	for i > 0 && s.records[i-1].CreatedAt.After(r.CreatedAt) {
		i--
	}
	s.records = slices.Insert(s.records, i, r)

	// drop the oldest over capacity
	if s.maxRecords > 0 && len(s.records) > s.maxRecords {
		s.records = append(s.records[:0:0], s.records[len(s.records)-s.maxRecords:]...)
	}
	return r.ID, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.records)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]Record, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make([]Record, 0)
	return nil
}

// Len number of records held
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
