package cache

import (
	"context"
	"sync"
	"time"

	"webgenie/internal/analyzer"
)

type memoryEntry struct {
	result    analyzer.AnalysisResult
	expiresAt time.Time
}

// MemoryCache is a process-local AnalysisCache. Expired entries are dropped
// on read and by Sweep.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

var _ AnalysisCache = (*MemoryCache)(nil)

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, html string) (*analyzer.AnalysisResult, bool, error) {
	key := Key(html)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}

	result := cloneResult(entry.result)
	return &result, true, nil
}

func (c *MemoryCache) Set(_ context.Context, html string, result *analyzer.AnalysisResult) error {
	if result == nil {
		return nil
	}
	c.mu.Lock()
	c.entries[Key(html)] = memoryEntry{
		result:    cloneResult(*result),
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
	return nil
}

// Sweep removes expired entries and returns how many were removed.
func (c *MemoryCache) Sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) Close() error {
	return nil
}

// cloneResult copies the suggestion slice so callers cannot mutate cached state.
func cloneResult(r analyzer.AnalysisResult) analyzer.AnalysisResult {
	r.Suggestions = append([]string{}, r.Suggestions...)
	return r
}
