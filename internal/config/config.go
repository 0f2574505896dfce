// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the candidate bot.
type Config struct {
	SpreadsheetID      string // Google Sheets document to poll
	CredentialsJSON    string // service account JSON, inline (takes priority)
	CredentialsFile    string // service account JSON, path on disk
	TelegramToken      string
	DefaultChatID      string // fallback recipient when a row names no recruiter; may be empty
	DatabaseURL        string
	RedisURL           string
	CheckIntervalHours int // how often the poll cycle fires
	HealthPort         string
}

// Load reads environment variables and returns a validated Config.
// A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	// Best effort: running without a .env file is normal in deployment.
	_ = godotenv.Load()

	sheetID := os.Getenv("GOOGLE_SHEETS_ID")
	if sheetID == "" {
		return nil, fmt.Errorf("GOOGLE_SHEETS_ID is required")
	}

	credsJSON := os.Getenv("GOOGLE_CREDENTIALS_JSON")
	credsFile := os.Getenv("GOOGLE_CREDENTIALS_FILE")
	if credsJSON == "" && credsFile == "" {
		return nil, fmt.Errorf("GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE is required")
	}

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	interval := 1
	if s := os.Getenv("CHECK_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("CHECK_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		interval = v
	}

	port := os.Getenv("HEALTH_PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		SpreadsheetID:      sheetID,
		CredentialsJSON:    credsJSON,
		CredentialsFile:    credsFile,
		TelegramToken:      token,
		DefaultChatID:      os.Getenv("DEFAULT_RECRUITER_CHAT_ID"),
		DatabaseURL:        dbURL,
		RedisURL:           redisURL,
		CheckIntervalHours: interval,
		HealthPort:         port,
	}, nil
}
