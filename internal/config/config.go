package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	OpenAIKey      string
	OpenAIBaseURL  string
	OpenAIModel    string
	RequestTimeout time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	RetryBackoff   float64
	Temperature    float64
	MaxTokens      int
	FlashcardsFile string
	CORSOrigins    []string
}

// Load reads configuration from the environment, providing sensible defaults.
// A missing API key is not an error here; the AI client rejects it at
// construction time so that storage-only usage keeps working.
func Load() Config {
	// Load .env file if it exists (useful for development)
	_ = godotenv.Load()
	cfg := Config{
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  getEnv("API_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4.1-nano-2025-04-14"),
		RequestTimeout: time.Duration(getEnvInt("AI_TIMEOUT_SECONDS", 30)) * time.Second,
		MaxRetries:     getEnvInt("AI_MAX_RETRIES", 3),
		RetryDelay:     time.Duration(getEnvFloat("AI_RETRY_DELAY", 1.0) * float64(time.Second)),
		RetryBackoff:   getEnvFloat("AI_RETRY_BACKOFF", 2.0),
		Temperature:    getEnvFloat("AI_TEMPERATURE", 0.7),
		MaxTokens:      getEnvInt("AI_MAX_TOKENS", 500),
		FlashcardsFile: getEnv("FLASHCARDS_FILE", "./data/flashcards.csv"),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FlashcardsFile), 0o755); err != nil {
		log.Fatalf("failed to ensure data dir for %s: %v", cfg.FlashcardsFile, err)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d", key, val, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using default %g", key, val, fallback)
		return fallback
	}
	return f
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
