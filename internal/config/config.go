package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string

	// Redis (shown-keyword history, pool cache, limiter store)
	RedisAddr     string
	RedisPassword string

	// Keyword metrics provider
	ProviderBaseURL string
	ProviderAPIKey  string
	ProviderTimeout time.Duration
	PerSeedLimit    int           // max candidates fetched per seed
	RetryBackoff    time.Duration // backoff before the single retry of a transient failure

	// Shared provider rate limit (sliding window)
	RateCeiling int           // max admissions per window
	RateWindow  time.Duration // trailing window duration

	// Language model
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string
	LLMTimeout time.Duration

	// Research results
	DefaultPageSize int // "show more" page size
	DefaultRankK    int // top-K returned by the ranking step

	// Conversation history
	HistoryTTL    time.Duration // idle lifetime of per-conversation shown history
	SweepInterval time.Duration // in-memory history prune interval

	// CORS
	CORSOrigins string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:         getEnv("ENV", "development"),
		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/seoscout?sslmode=disable"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		ProviderBaseURL: getEnv("PROVIDER_BASE_URL", "https://api.keywordmetrics.example.com"),
		ProviderAPIKey:  getEnv("PROVIDER_API_KEY", ""),
		ProviderTimeout: getDuration("PROVIDER_TIMEOUT", 15*time.Second),
		PerSeedLimit:    getInt("PER_SEED_LIMIT", 30),
		RetryBackoff:    getDuration("RETRY_BACKOFF", 750*time.Millisecond),

		RateCeiling: getInt("RATE_CEILING", 50),
		RateWindow:  getDuration("RATE_WINDOW", time.Minute),

		LLMBaseURL: getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:  getEnv("LLM_API_KEY", ""),
		LLMModel:   getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeout: getDuration("LLM_TIMEOUT", 30*time.Second),

		DefaultPageSize: getInt("DEFAULT_PAGE_SIZE", 10),
		DefaultRankK:    getInt("DEFAULT_RANK_K", 50),

		HistoryTTL:    getDuration("HISTORY_TTL", 168*time.Hour),
		SweepInterval: getDuration("SWEEP_INTERVAL", 10*time.Minute),

		CORSOrigins: getEnv("CORS_ORIGINS", ""),
	}
}

// Validate checks configuration that must be correct before the process can
// serve requests. Violations are fatal at startup, never per-request.
func (c *Config) Validate() error {
	if c.RateCeiling <= 0 {
		return fmt.Errorf("RATE_CEILING must be positive, got %d", c.RateCeiling)
	}
	if c.RateWindow <= 0 {
		return fmt.Errorf("RATE_WINDOW must be positive, got %v", c.RateWindow)
	}
	if c.PerSeedLimit <= 0 {
		return fmt.Errorf("PER_SEED_LIMIT must be positive, got %d", c.PerSeedLimit)
	}
	if c.DefaultPageSize <= 0 {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be positive, got %d", c.DefaultPageSize)
	}
	if c.DefaultRankK <= 0 {
		return fmt.Errorf("DEFAULT_RANK_K must be positive, got %d", c.DefaultRankK)
	}
	if !c.IsDev() {
		if c.ProviderAPIKey == "" {
			return fmt.Errorf("PROVIDER_API_KEY is required outside development")
		}
		if c.LLMAPIKey == "" {
			return fmt.Errorf("LLM_API_KEY is required outside development")
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}
