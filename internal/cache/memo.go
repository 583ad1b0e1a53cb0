package cache

import (
	"fmt"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
)

// Memo bounded result cache for pure computations. Keys are the full input
// tuple; one Memo per calculator keeps them from evicting each other.
type Memo[V any] struct {
	name   string
	lru    *lru.Cache
	hits   atomic.Uint64
	misses atomic.Uint64
}

// Stats hit/miss counters
type Stats struct {
	Name   string `json:"name"`
	Size   int    `json:"size"`
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// New size <= 0 disables caching, Do then always computes.
func New[V any](name string, size int) (*Memo[V], error) {
	m := &Memo[V]{name: name}
	if size <= 0 {
		return m, nil
	}

	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create %s cache: %w", name, err)
	}
	m.lru = c
	return m, nil
}

// Key builds a key from the input values, type-qualified so 1 and 1.0 differ.
func Key(inputs ...interface{}) string {
	var b strings.Builder
	for _, in := range inputs {
		fmt.Fprintf(&b, "%T:%#v|", in, in)
	}
	return b.String()
}

// Do returns the cached value for key or computes and stores it.
func (m *Memo[V]) Do(key string, compute func() V) V {
	if m == nil || m.lru == nil {
		return compute()
	}

	if v, ok := m.lru.Get(key); ok {
		m.hits.Add(1)
		return v.(V)
	}
	m.misses.Add(1)

	v := compute()
	m.lru.Add(key, v)
	return v
}

// Purge drops every entry.
func (m *Memo[V]) Purge() {
	if m != nil && m.lru != nil {
		m.lru.Purge()
	}
}

func (m *Memo[V]) Stats() Stats {
	if m == nil {
		return Stats{}
	}
	s := Stats{Name: m.name, Hits: m.hits.Load(), Misses: m.misses.Load()}
	if m.lru != nil {
		s.Size = m.lru.Len()
	}
	return s
}
