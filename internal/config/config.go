package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string

	// Storage
	DatabaseURL string
	MemoryStore bool

	// Upstream
	WebhookURL         string
	OpenAIKey          string
	OpenAIModel        string
	OpenAISystemPrompt string
	UpstreamTimeout    time.Duration

	// Rate limiting
	RateLimit  int
	RateWindow time.Duration
}

// Load reads configuration from .env (if present) and the environment.
// It fails when no storage or no upstream is configured — the process
// must not accept traffic without both.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Port:               getEnvOrDefault("PORT", "3001"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		MemoryStore:        os.Getenv("MEMORY_STORE") == "true",
		WebhookURL:         os.Getenv("N8N_WEBHOOK_URL"),
		OpenAIKey:          os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        os.Getenv("OPENAI_MODEL"),
		OpenAISystemPrompt: os.Getenv("OPENAI_SYSTEM_PROMPT"),
		UpstreamTimeout:    time.Duration(getEnvAsIntOrDefault("UPSTREAM_TIMEOUT_SECONDS", 10)) * time.Second,
		RateLimit:          getEnvAsIntOrDefault("RATE_LIMIT", 20),
		RateWindow:         time.Duration(getEnvAsIntOrDefault("RATE_WINDOW_SECONDS", 60)) * time.Second,
	}

	if cfg.DatabaseURL == "" && !cfg.MemoryStore {
		return nil, fmt.Errorf("DATABASE_URL is not set (or set MEMORY_STORE=true)")
	}
	if cfg.WebhookURL == "" && cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("no upstream configured: set N8N_WEBHOOK_URL or OPENAI_API_KEY")
	}
	if cfg.RateLimit < 1 {
		return nil, fmt.Errorf("RATE_LIMIT must be positive, got %d", cfg.RateLimit)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
