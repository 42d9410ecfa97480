package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the assistant service.
type Config struct {
	AppName          string
	AppVersion       string
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	// ClientIdleTimeout bounds how long a websocket client may stay silent
	// before the connection is dropped. Application-level pings reset it.
	ClientIdleTimeout time.Duration

	AllowAnyOrigin bool

	OpenAIAPIKey   string
	OpenAIBaseURL  string
	OpenAIModel    string
	EmbeddingModel string
	EmbeddingDim   int

	ModelTimeout time.Duration
	EmbedTimeout time.Duration

	DatabaseURL string

	HistoryWindow      int
	MemoryThreshold    float64
	MemorySearchLimit  int
	ContextMemoryLimit int
	MemoryMinChars     int
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		AppName:            "A.B.E.L",
		AppVersion:         envOrDefault("APP_VERSION", "1.0.0"),
		BindAddr:           envOrDefault("APP_BIND_ADDR", ":8000"),
		MetricsNamespace:   envOrDefault("APP_METRICS_NAMESPACE", "abel"),
		AllowAnyOrigin:     false,
		OpenAIAPIKey:       stringsTrimSpace("OPENAI_API_KEY"),
		OpenAIBaseURL:      stringsTrimSpace("OPENAI_BASE_URL"),
		OpenAIModel:        envOrDefault("OPENAI_MODEL", "gpt-4-turbo-preview"),
		EmbeddingModel:     envOrDefault("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDim:       1536,
		ModelTimeout:       60 * time.Second,
		EmbedTimeout:       10 * time.Second,
		DatabaseURL:        stringsTrimSpace("DATABASE_URL"),
		ShutdownTimeout:    15 * time.Second,
		ClientIdleTimeout:  5 * time.Minute,
		HistoryWindow:      20,
		MemoryThreshold:    0.7,
		MemorySearchLimit:  5,
		ContextMemoryLimit: 3,
		MemoryMinChars:     20,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ClientIdleTimeout, err = durationFromEnv("APP_CLIENT_IDLE_TIMEOUT", cfg.ClientIdleTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ModelTimeout, err = durationFromEnv("OPENAI_MODEL_TIMEOUT", cfg.ModelTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.EmbedTimeout, err = durationFromEnv("OPENAI_EMBED_TIMEOUT", cfg.EmbedTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.EmbeddingDim, err = intFromEnv("MEMORY_EMBEDDING_DIM", cfg.EmbeddingDim)
	if err != nil {
		return Config{}, err
	}
	cfg.HistoryWindow, err = intFromEnv("SESSION_HISTORY_WINDOW", cfg.HistoryWindow)
	if err != nil {
		return Config{}, err
	}
	cfg.MemoryThreshold, err = floatFromEnv("MEMORY_MATCH_THRESHOLD", cfg.MemoryThreshold)
	if err != nil {
		return Config{}, err
	}
	cfg.MemorySearchLimit, err = intFromEnv("MEMORY_SEARCH_LIMIT", cfg.MemorySearchLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.ContextMemoryLimit, err = intFromEnv("MEMORY_CONTEXT_LIMIT", cfg.ContextMemoryLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.MemoryMinChars, err = intFromEnv("MEMORY_MIN_CHARS", cfg.MemoryMinChars)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.ClientIdleTimeout <= 0 {
		return Config{}, fmt.Errorf("APP_CLIENT_IDLE_TIMEOUT must be positive")
	}
	if cfg.EmbeddingDim <= 0 {
		return Config{}, fmt.Errorf("MEMORY_EMBEDDING_DIM must be positive")
	}
	if cfg.HistoryWindow <= 0 {
		return Config{}, fmt.Errorf("SESSION_HISTORY_WINDOW must be positive")
	}
	if cfg.MemoryThreshold < 0 || cfg.MemoryThreshold > 1 {
		return Config{}, fmt.Errorf("MEMORY_MATCH_THRESHOLD must be in [0,1]")
	}
	if cfg.MemorySearchLimit <= 0 {
		return Config{}, fmt.Errorf("MEMORY_SEARCH_LIMIT must be positive")
	}
	if cfg.ContextMemoryLimit <= 0 {
		return Config{}, fmt.Errorf("MEMORY_CONTEXT_LIMIT must be positive")
	}
	if cfg.MemoryMinChars < 0 {
		return Config{}, fmt.Errorf("MEMORY_MIN_CHARS must be >= 0")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
