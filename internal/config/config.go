package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"

	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config holds the configuration for the application.
type Config struct {
	LLMProvider  string
	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string
	// GroqURL overrides the chat completions endpoint.
	GroqURL string
	// LLMTimeout bounds a single generation call. Zero means no client-side deadline.
	LLMTimeout time.Duration

	StorageBackend string
	DatabasePath   string
	StoragePath    string

	Port          string
	SessionSecret string
	SessionTTL    time.Duration

	// Zero disables the limiter on generation endpoints.
	AIRateLimitPerMinute int
	AIRateLimitBurst     int

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

// NewFromEnv creates a new Config object from environment variables.
// A .env file in the working directory is loaded first when present.
func NewFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	provider := strings.ToLower(envOrDefault("LLM_PROVIDER", ProviderGemini))

	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	groqAPIKey := os.Getenv("GROQ_API_KEY")

	switch provider {
	case ProviderGemini:
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case ProviderGroq:
		if groqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", provider)
	}

	backend := strings.ToLower(envOrDefault("STORAGE_BACKEND", BackendSQLite))
	if backend != BackendSQLite && backend != BackendFile {
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", backend)
	}

	llmTimeout, err := durationEnv("LLM_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}

	sessionTTL, err := durationEnv("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	rateLimit, err := intEnv("AI_RATE_LIMIT_PER_MINUTE", 0)
	if err != nil {
		return nil, err
	}

	rateBurst, err := intEnv("AI_RATE_LIMIT_BURST", 5)
	if err != nil {
		return nil, err
	}

	// Telegram Config (optional, the bot is only started when a token is set)
	allowedIDs, err := int64ListEnv("TELEGRAM_ALLOWED_USER_IDS")
	if err != nil {
		return nil, err
	}

	var adminID int64
	if raw := os.Getenv("ADMIN_TELEGRAM_ID"); raw != "" {
		adminID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	return &Config{
		LLMProvider:            provider,
		GeminiAPIKey:           geminiAPIKey,
		GeminiModel:            envOrDefault("GEMINI_MODEL", "gemini-3-flash-preview"),
		GroqAPIKey:             groqAPIKey,
		GroqModel:              envOrDefault("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GroqURL:                os.Getenv("GROQ_API_URL"),
		LLMTimeout:             llmTimeout,
		StorageBackend:         backend,
		DatabasePath:           envOrDefault("DATABASE_PATH", "data/nutrigenie.db"),
		StoragePath:            envOrDefault("STORAGE_PATH", "data/profiles"),
		Port:                   envOrDefault("PORT", "8080"),
		SessionSecret:          os.Getenv("SESSION_SECRET"),
		SessionTTL:             sessionTTL,
		AIRateLimitPerMinute:   rateLimit,
		AIRateLimitBurst:       rateBurst,
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowedIDs,
		AdminTelegramID:        adminID,
	}, nil
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func intEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return v, nil
}

func int64ListEnv(key string) ([]int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return nil, nil
	}

	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry %q: %w", key, part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
