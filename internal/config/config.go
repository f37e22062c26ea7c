package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	BaseURL            string
	GoogleClientID     string
	GoogleClientSecret string
	SessionSecret      string
	DatabaseURL        string
	Env                string

	// LLM settings. Each task gets its own model so they can be tuned
	// independently.
	AIProvider       string
	AIKey            string
	SummaryModel     string
	CategoryModel    string
	UnsubscribeModel string

	// Sync window settings.
	SyncPageSize    int64
	MaxSyncMessages int
	SyncBuffer      time.Duration
	SyncInterval    time.Duration

	// Unsubscribe agent settings.
	BrowserNavTimeout time.Duration
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:               GetEnv("PORT", "8080"),
		BaseURL:            GetEnv("BASE_URL", "http://localhost:8080"),
		GoogleClientID:     GetEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: GetEnv("GOOGLE_CLIENT_SECRET", ""),
		SessionSecret:      GetEnv("SESSION_SECRET", ""),
		DatabaseURL:        GetEnv("DATABASE_URL", ""),
		Env:                GetEnv("ENV", "development"),
		AIProvider:         GetEnv("AI_PROVIDER", "openai"),
		AIKey:              GetEnv("AI_API_KEY", ""),
		SummaryModel:       GetEnv("AI_SUMMARY_MODEL", "gpt-4o-mini"),
		CategoryModel:      GetEnv("AI_CATEGORY_MODEL", "gpt-4o-mini"),
		UnsubscribeModel:   GetEnv("AI_UNSUBSCRIBE_MODEL", "gpt-4o"),
		SyncPageSize:       int64(GetEnvInt("SYNC_PAGE_SIZE", 100)),
		MaxSyncMessages:    GetEnvInt("MAX_SYNC_MESSAGES", 500),
		SyncBuffer:         GetEnvDuration("SYNC_BUFFER", 24*time.Hour),
		SyncInterval:       GetEnvDuration("SYNC_INTERVAL", time.Minute),
		BrowserNavTimeout:  GetEnvDuration("BROWSER_NAV_TIMEOUT", 30*time.Second),
	}, nil
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.GoogleClientID == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID is required")
	}
	if c.GoogleClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_SECRET is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.AIKey == "" {
		return fmt.Errorf("AI_API_KEY is required")
	}
	return nil
}
