// Package cache memoises lookups for the lifetime of one value, such as a
// reference resolver serving one SED assembly. Entries never expire and no
// janitor goroutine runs.
package cache

import (
	"sync/atomic"

	gocache "github.com/patrickmn/go-cache"
)

// Memo maps string keys to values of type V and counts hits and misses.
// It is safe for concurrent use.
type Memo[V any] struct {
	store  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// Stats is a snapshot of a Memo's counters.
type Stats struct {
	Items  int   `json:"items"`
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// New returns an empty Memo.
func New[V any]() *Memo[V] {
	return &Memo[V]{store: gocache.New(gocache.NoExpiration, 0)}
}

// Get returns the value stored under key.
func (m *Memo[V]) Get(key string) (V, bool) {
	if v, ok := m.store.Get(key); ok {
		m.hits.Add(1)
		return v.(V), true
	}
	m.misses.Add(1)
	var zero V
	return zero, false
}

// Set stores v under key, replacing any previous value.
func (m *Memo[V]) Set(key string, v V) {
	m.store.Set(key, v, gocache.NoExpiration)
}

// Load returns the value under key, calling fn on a miss. The result of
// fn is kept only when fn reports it as final, so transient failures are
// retried on the next Load.
func (m *Memo[V]) Load(key string, fn func() (v V, final bool)) V {
	if v, ok := m.Get(key); ok {
		return v
	}
	v, final := fn()
	if final {
		m.Set(key, v)
	}
	return v
}

// Len returns the number of stored keys.
func (m *Memo[V]) Len() int {
	return m.store.ItemCount()
}

// Stats returns the current counters.
func (m *Memo[V]) Stats() Stats {
	return Stats{Items: m.Len(), Hits: m.hits.Load(), Misses: m.misses.Load()}
}
