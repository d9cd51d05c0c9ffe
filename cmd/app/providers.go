package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/jmorelli/chatdocs/internal/domain/chat"
	"github.com/jmorelli/chatdocs/internal/domain/docproc"
	"github.com/jmorelli/chatdocs/internal/domain/transcribe"
	"github.com/jmorelli/chatdocs/internal/infra/config"
	"github.com/jmorelli/chatdocs/internal/infra/extractcache"
	"github.com/jmorelli/chatdocs/internal/infra/history"
	"github.com/jmorelli/chatdocs/internal/infra/llm/ollama"
	"github.com/jmorelli/chatdocs/internal/infra/stt/elevenlabs"
	"github.com/jmorelli/chatdocs/internal/infra/uploadstore"
)

func provideDocprocConfig(cfg *config.Config) docproc.Config {
	out := docproc.Config{
		MaxFileSize:      cfg.Processing.MaxFileSize,
		TextExtractLimit: cfg.Processing.TextExtractLimit,
		Temperature:      cfg.LLM.Temperature,
		TextModel:        cfg.LLM.DefaultModel,
		VisionModel:      cfg.LLM.VisionModel,
	}
	if len(cfg.Processing.AllowedExtensions) > 0 {
		out.AllowedExtensions = make(map[string]struct{}, len(cfg.Processing.AllowedExtensions))
		for _, ext := range cfg.Processing.AllowedExtensions {
			out.AllowedExtensions[strings.ToLower(ext)] = struct{}{}
		}
	}
	if len(cfg.Processing.AllowedContentTypes) > 0 {
		out.AllowedContentTypes = make(map[string]map[string]struct{}, len(cfg.Processing.AllowedContentTypes))
		for ext, types := range cfg.Processing.AllowedContentTypes {
			set := make(map[string]struct{}, len(types))
			for _, ct := range types {
				set[strings.ToLower(ct)] = struct{}{}
			}
			out.AllowedContentTypes[strings.ToLower(ext)] = set
		}
	}
	return out
}

func provideChatConfig(cfg *config.Config) chat.Config {
	return chat.Config{
		DefaultModel:     cfg.LLM.DefaultModel,
		Temperature:      cfg.LLM.Temperature,
		MaxHistoryTokens: cfg.LLM.MaxHistoryTokens,
	}
}

func provideTranscribeConfig(cfg *config.Config) transcribe.Config {
	return transcribe.Config{
		ModelID:        cfg.STT.ModelID,
		LanguageCode:   cfg.STT.LanguageCode,
		Diarize:        true,
		TagAudioEvents: true,
	}
}

func provideOllamaClient(cfg *config.Config) *ollama.Client {
	return ollama.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
}

// provideSTTClient returns nil when no API key is configured; the
// transcription service reports that per request.
func provideSTTClient(cfg *config.Config, logger *slog.Logger) transcribe.STTClient {
	if strings.TrimSpace(cfg.STT.APIKey) == "" {
		logger.Info("elevenlabs api key not set, transcription disabled")
		return nil
	}
	client, err := elevenlabs.NewClient(cfg.STT.APIKey, cfg.STT.BaseURL)
	if err != nil {
		logger.Error("failed to create elevenlabs client, transcription disabled", "error", err)
		return nil
	}
	return client
}

func provideThreadStore(cfg *config.Config, logger *slog.Logger) chat.ThreadStore {
	fallback := history.NewMemoryStore()
	dsn := strings.TrimSpace(cfg.History.PostgresDSN)
	if dsn == "" {
		logger.Info("history postgres dsn not set, using memory store")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory store", "error", err)
		return fallback
	}
	if cfg.History.MaxConns > 0 {
		poolConfig.MaxConns = cfg.History.MaxConns
	}
	if cfg.History.MinConns > 0 {
		poolConfig.MinConns = cfg.History.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory store", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory store", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("history postgres store enabled")
	return history.NewPostgresStore(pool)
}

func provideExtractCache(cfg *config.Config, logger *slog.Logger) chat.ExtractCache {
	if cfg.Cache.Enabled {
		opt, err := buildValkeyOptions(cfg.Cache.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return extractcache.NewMemoryCache(cfg.Cache.TTL)
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return extractcache.NewMemoryCache(cfg.Cache.TTL)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
			client.Close()
		} else {
			logger.Info("valkey extract cache enabled", "addr", cfg.Cache.Addr)
			return extractcache.NewValkeyCache(client, "extract", cfg.Cache.TTL)
		}
	}
	return extractcache.NewMemoryCache(cfg.Cache.TTL)
}

func provideObjectStore(cfg *config.Config, logger *slog.Logger) chat.ObjectStore {
	if !cfg.UploadStore.Enabled {
		logger.Info("upload store not configured, uploads are not archived")
		return uploadstore.NewNoopStore()
	}
	store, err := uploadstore.NewMinioStore(
		cfg.UploadStore.Endpoint,
		cfg.UploadStore.AccessKey,
		cfg.UploadStore.SecretKey,
		cfg.UploadStore.Bucket,
		cfg.UploadStore.Region,
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize upload store, uploads are not archived", "error", err)
		return uploadstore.NewNoopStore()
	}
	logger.Info("upload store enabled", "bucket", cfg.UploadStore.Bucket)
	return store
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
