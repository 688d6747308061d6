package summarycache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/civiclens/councilscribe/internal/domain/records"
)

type cacheEntry struct {
	summary   records.Summary
	expiresAt time.Time
}

type cacheKey struct {
	kind     records.EntityKind
	entityID uuid.UUID
	style    string
}

// MemoryCache caches summaries in process memory for tests/dev.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry
}

// NewMemoryCache constructs a cache backed by process memory.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[cacheKey]cacheEntry)}
}

// Get implements records.SummaryCache.
func (c *MemoryCache) Get(_ context.Context, kind records.EntityKind, entityID uuid.UUID, style string) (records.Summary, bool, error) {
	key := cacheKey{kind: kind, entityID: entityID, style: style}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return records.Summary{}, false, nil
	}
	if hasExpired(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return records.Summary{}, false, nil
	}
	return entry.summary, true, nil
}

// Put caches the summary with optional TTL.
func (c *MemoryCache) Put(_ context.Context, summary records.Summary, ttl time.Duration) error {
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	key := cacheKey{kind: summary.EntityKind, entityID: summary.EntityID, style: summary.Style}
	c.mu.Lock()
	c.entries[key] = cacheEntry{summary: summary, expiresAt: exp}
	c.mu.Unlock()
	return nil
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(time.Now())
}

var _ records.SummaryCache = (*MemoryCache)(nil)
