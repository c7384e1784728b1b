package cache

import (
	"context"
	"sync"
	"time"

	"libercare/types"
)

type memoryEntry struct {
	results   []types.SearchResult
	expiresAt time.Time
}

// MemoryStore is an in-process Store with per-entry expiry
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

// Get returns a copy of the cached results when the entry has not expired
func (m *MemoryStore) Get(_ context.Context, key string) ([]types.SearchResult, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	out := make([]types.SearchResult, len(e.results))
	copy(out, e.results)
	return out, true, nil
}

// Set stores a copy of results. A non-positive ttl never expires.
func (m *MemoryStore) Set(_ context.Context, key string, results []types.SearchResult, ttl time.Duration) error {
	stored := make([]types.SearchResult, len(results))
	copy(stored, results)
	e := memoryEntry{results: stored}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.sweepLocked()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// sweepLocked drops expired entries. Keys embed their bucket, so entries of
// past buckets are never read again. Must be called with the lock held.
func (m *MemoryStore) sweepLocked() {
	now := m.now()
	for key, e := range m.entries {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(m.entries, key)
		}
	}
}

// Len returns the number of stored entries, including expired ones not yet swept
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
