package extractcache

import (
	"context"
	"sync"
	"time"

	"github.com/jmorelli/chatdocs/internal/domain/chat"
)

type entry struct {
	text      string
	expiresAt time.Time
}

// MemoryCache is an in-memory chat.ExtractCache used for tests/dev.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
}

// NewMemoryCache constructs a cache backed by process memory.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Get implements chat.ExtractCache.
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if hasExpired(cached.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false, nil
	}
	return cached.text, true, nil
}

// Set implements chat.ExtractCache.
func (c *MemoryCache) Set(_ context.Context, key, text string) error {
	exp := time.Time{}
	if c.ttl > 0 {
		exp = time.Now().Add(c.ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry{text: text, expiresAt: exp}
	c.mu.Unlock()
	return nil
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(time.Now())
}

var _ chat.ExtractCache = (*MemoryCache)(nil)
