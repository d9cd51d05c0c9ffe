package extractcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	cache := NewMemoryCache(time.Hour)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Set(ctx, "digest", "extracted text"))

	text, ok, err := cache.Get(ctx, "digest")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "extracted text", text)
}

func TestMemoryCacheExpiry(t *testing.T) {
	cache := NewMemoryCache(time.Nanosecond)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "digest", "text"))
	time.Sleep(5 * time.Millisecond)

	_, ok, err := cache.Get(ctx, "digest")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryCacheZeroTTLNeverExpires(t *testing.T) {
	cache := NewMemoryCache(0)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "digest", "text"))
	time.Sleep(2 * time.Millisecond)

	_, ok, err := cache.Get(ctx, "digest")
	require.NoError(t, err)
	require.True(t, ok)
}
