package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jmorelli/chatdocs/internal/infra/config"
	"github.com/jmorelli/chatdocs/internal/infra/extractcache"
	"github.com/jmorelli/chatdocs/internal/infra/history"
	"github.com/jmorelli/chatdocs/internal/infra/uploadstore"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProvideExtractCacheDisabledUsesMemory(t *testing.T) {
	cache := provideExtractCache(&config.Config{}, discardLogger())
	require.IsType(t, &extractcache.MemoryCache{}, cache)
}

func TestProvideExtractCacheUnreachableServerFallsBack(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cache.Enabled = true
	cfg.Cache.Addr = "127.0.0.1:1" // nothing listens here

	cache := provideExtractCache(cfg, discardLogger())
	require.IsType(t, &extractcache.MemoryCache{}, cache)
}

func TestProvideThreadStoreEmptyDSNUsesMemory(t *testing.T) {
	store := provideThreadStore(&config.Config{}, discardLogger())
	require.IsType(t, &history.MemoryStore{}, store)
}

func TestProvideSTTClientWithoutKeyIsNil(t *testing.T) {
	require.Nil(t, provideSTTClient(&config.Config{}, discardLogger()))
}

func TestProvideObjectStoreDisabledIsNoop(t *testing.T) {
	store := provideObjectStore(&config.Config{}, discardLogger())
	require.IsType(t, &uploadstore.NoopStore{}, store)
}
