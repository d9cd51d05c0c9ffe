package extractcache

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/jmorelli/chatdocs/internal/domain/chat"
)

// ValkeyCache memoizes processed document text in a Valkey-compatible
// database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewValkeyCache constructs a cache backed by Valkey.
func NewValkeyCache(client valkey.Client, prefix string, ttl time.Duration) *ValkeyCache {
	if prefix == "" {
		prefix = "extract"
	}
	return &ValkeyCache{client: client, prefix: prefix, ttl: ttl}
}

// Get implements chat.ExtractCache.
func (c *ValkeyCache) Get(ctx context.Context, key string) (string, bool, error) {
	cmd := c.client.B().Get().Key(c.entryKey(key)).Build()
	text, err := c.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return text, true, nil
}

// Set implements chat.ExtractCache.
func (c *ValkeyCache) Set(ctx context.Context, key, text string) error {
	builder := c.client.B().Set().Key(c.entryKey(key)).Value(text)
	if c.ttl > 0 {
		return c.client.Do(ctx, builder.Ex(c.ttl).Build()).Error()
	}
	return c.client.Do(ctx, builder.Build()).Error()
}

func (c *ValkeyCache) entryKey(key string) string {
	return c.prefix + ":" + key
}

var _ chat.ExtractCache = (*ValkeyCache)(nil)
