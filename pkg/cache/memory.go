package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-legaldocs/pkg/records"
)

type memoryEntry struct {
	artifact records.GeneratedArtifact
	expires  time.Time
}

// MemoryCache is an in-process Cache. A zero ttl keeps entries forever.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory constructs an empty cache. now defaults to time.Now.
func NewMemory(now func() time.Time) *MemoryCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{entries: make(map[string]memoryEntry), now: now}
}

func (c *MemoryCache) Get(_ context.Context, key string) (records.GeneratedArtifact, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return records.GeneratedArtifact{}, false, nil
	}
	if !entry.expires.IsZero() && !c.now().Before(entry.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return records.GeneratedArtifact{}, false, nil
	}
	return entry.artifact, true, nil
}

func (c *MemoryCache) Put(_ context.Context, key string, artifact records.GeneratedArtifact, ttl time.Duration) error {
	entry := memoryEntry{artifact: artifact}
	if ttl > 0 {
		entry.expires = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) DeleteCompany(_ context.Context, companyID string) error {
	prefix := companyPrefix(companyID)
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
