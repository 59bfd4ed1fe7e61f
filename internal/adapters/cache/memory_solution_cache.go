package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// In-process cache used when no Redis or SQLite cache is configured.
type MemorySolutionCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemorySolutionCache() *MemorySolutionCache {
	return &MemorySolutionCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemorySolutionCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return append([]byte(nil), e.payload...), true, nil
}

func (c *MemorySolutionCache) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{
		payload:   append([]byte(nil), payload...),
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

func (c *MemorySolutionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
