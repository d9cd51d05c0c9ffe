package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	LLM         LLMConfig         `yaml:"llm"`
	Processing  ProcessingConfig  `yaml:"processing"`
	STT         STTConfig         `yaml:"stt"`
	History     HistoryConfig     `yaml:"history"`
	Cache       CacheConfig       `yaml:"cache"`
	UploadStore UploadStoreConfig `yaml:"uploadStore"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string        `yaml:"address"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
}

// LLMConfig contains Ollama connection and model settings.
type LLMConfig struct {
	APIKey           string  `yaml:"apiKey"`
	BaseURL          string  `yaml:"baseUrl"`
	DefaultModel     string  `yaml:"defaultModel"`
	VisionModel      string  `yaml:"visionModel"`
	Temperature      float64 `yaml:"temperature"`
	MaxHistoryTokens int     `yaml:"maxHistoryTokens"`
}

// ProcessingConfig bounds the document ingestion pipeline.
type ProcessingConfig struct {
	MaxFileSize         int64               `yaml:"maxFileSize"`
	TextExtractLimit    int                 `yaml:"textExtractLimit"`
	AllowedExtensions   []string            `yaml:"allowedExtensions"`
	AllowedContentTypes map[string][]string `yaml:"allowedContentTypes"`
}

// STTConfig contains ElevenLabs speech-to-text settings.
type STTConfig struct {
	APIKey       string `yaml:"apiKey"`
	BaseURL      string `yaml:"baseUrl"`
	ModelID      string `yaml:"modelId"`
	LanguageCode string `yaml:"languageCode"`
}

// HistoryConfig contains DSN and pooling settings for the chat history store.
type HistoryConfig struct {
	PostgresDSN string `yaml:"postgresDsn"`
	MaxConns    int32  `yaml:"maxConns"`
	MinConns    int32  `yaml:"minConns"`
}

// CacheConfig controls the processed-document cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Addr    string        `yaml:"addr"`
	TTL     time.Duration `yaml:"ttl"`
}

// UploadStoreConfig contains S3-compatible storage for raw uploads.
type UploadStoreConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("OLLAMA_SECRET_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("DEFAULT_MODEL"); v != "" {
		cfg.LLM.DefaultModel = v
	}
	if v := os.Getenv("VISION_MODEL"); v != "" {
		cfg.LLM.VisionModel = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.LLM.Temperature = parsed
		}
	}
	if v := os.Getenv("LLM_MAX_HISTORY_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.LLM.MaxHistoryTokens = parsed
		}
	}
	if v := os.Getenv("PROCESSING_MAX_FILE_SIZE"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Processing.MaxFileSize = parsed
		}
	}
	if v := os.Getenv("PROCESSING_TEXT_EXTRACT_LIMIT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Processing.TextExtractLimit = parsed
		}
	}
	if v := os.Getenv("ELEVENLABS_API_KEY"); v != "" {
		cfg.STT.APIKey = v
	}
	if v := os.Getenv("ELEVENLABS_BASE_URL"); v != "" {
		cfg.STT.BaseURL = v
	}
	if v := os.Getenv("STT_LANGUAGE_CODE"); v != "" {
		cfg.STT.LanguageCode = v
	}
	if v := os.Getenv("HISTORY_POSTGRES_DSN"); v != "" {
		cfg.History.PostgresDSN = v
	}
	if v := os.Getenv("HISTORY_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.History.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = parsed
		}
	}
	if v := os.Getenv("UPLOAD_STORE_ENABLED"); v != "" {
		cfg.UploadStore.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("UPLOAD_STORE_ENDPOINT"); v != "" {
		cfg.UploadStore.Endpoint = v
	}
	if v := os.Getenv("UPLOAD_STORE_ACCESS_KEY"); v != "" {
		cfg.UploadStore.AccessKey = v
	}
	if v := os.Getenv("UPLOAD_STORE_SECRET_KEY"); v != "" {
		cfg.UploadStore.SecretKey = v
	}
	if v := os.Getenv("UPLOAD_STORE_BUCKET"); v != "" {
		cfg.UploadStore.Bucket = v
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
		LLM: LLMConfig{
			BaseURL:          "http://localhost:11434",
			DefaultModel:     "gpt-oss:120b-cloud",
			VisionModel:      "qwen3-vl:235b-cloud",
			Temperature:      0.0,
			MaxHistoryTokens: 4000,
		},
		Processing: ProcessingConfig{
			MaxFileSize:      100 * 1024 * 1024,
			TextExtractLimit: 10000,
		},
		STT: STTConfig{
			BaseURL:      "https://api.elevenlabs.io",
			ModelID:      "scribe_v1",
			LanguageCode: "spa",
		},
		History: HistoryConfig{
			MaxConns: 4,
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     6 * time.Hour,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.LLM.BaseURL) == "" {
		return errors.New("llm.baseUrl cannot be empty")
	}
	if strings.TrimSpace(c.LLM.DefaultModel) == "" {
		return errors.New("llm.defaultModel cannot be empty")
	}
	if strings.TrimSpace(c.LLM.VisionModel) == "" {
		return errors.New("llm.visionModel cannot be empty")
	}
	if c.LLM.Temperature < 0 {
		return errors.New("llm.temperature cannot be negative")
	}
	if c.Processing.MaxFileSize <= 0 {
		return errors.New("processing.maxFileSize must be positive")
	}
	if c.Processing.TextExtractLimit <= 0 {
		return errors.New("processing.textExtractLimit must be positive")
	}
	for ext := range c.Processing.AllowedContentTypes {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("processing.allowedContentTypes key %q must start with a dot", ext)
		}
	}
	if strings.TrimSpace(c.STT.ModelID) == "" {
		return errors.New("stt.modelId cannot be empty")
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Addr) == "" {
		return errors.New("cache.addr cannot be empty when the cache is enabled")
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl cannot be negative")
	}
	if c.UploadStore.Enabled {
		if strings.TrimSpace(c.UploadStore.Endpoint) == "" {
			return errors.New("uploadStore.endpoint cannot be empty when enabled")
		}
		if strings.TrimSpace(c.UploadStore.Bucket) == "" {
			return errors.New("uploadStore.bucket cannot be empty when enabled")
		}
	}
	return nil
}
