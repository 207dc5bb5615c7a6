// Package cache provides the product-list cache used by catalog assembly.
// The default implementation is in-process memory; a Redis-backed
// implementation is available when shared caching across replicas is wanted.
package cache

import (
	"context"
	"sync"
	"time"

	"storefront-service/internal/models"
)

// ProductCache stores normalized product lists keyed by a query fingerprint.
type ProductCache interface {
	Get(ctx context.Context, key string) ([]models.Product, bool)
	Set(ctx context.Context, key string, items []models.Product, ttl time.Duration)
}

type memoryEntry struct {
	items     []models.Product
	expiresAt time.Time
}

// Memory is an in-process ProductCache. Expired entries are evicted lazily
// on the next lookup; there is no background sweep.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory creates an in-memory product cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the cached list for key if present and unexpired.
func (m *Memory) Get(ctx context.Context, key string) ([]models.Product, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}
	return entry.items, true
}

// Set stores a list under key for the given TTL.
func (m *Memory) Set(ctx context.Context, key string, items []models.Product, ttl time.Duration) {
	m.mu.Lock()
	m.entries[key] = memoryEntry{items: items, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
}
