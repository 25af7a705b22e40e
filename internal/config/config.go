// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for the databases (always absolute)
	Port     int
	LogLevel string
	DevMode  bool

	// Currency normalization. All aggregate values are reported in the
	// primary currency; the secondary is converted through the reference
	// rate (secondary units per one primary unit).
	PrimaryCurrency   string
	SecondaryCurrency string
	// FallbackRate is used when no rate was ever fetched successfully.
	FallbackRate float64

	// External market data endpoints.
	MarketDataBaseURL   string
	ExchangeRateBaseURL string

	// Summary stream push interval.
	StreamInterval time.Duration

	Backup *BackupConfig
}

// BackupConfig holds settings for the scheduled database backup.
// When Bucket is empty, backups stay local only.
type BackupConfig struct {
	Enabled   bool
	Schedule  string // cron spec
	Endpoint  string // S3-compatible endpoint (e.g. Cloudflare R2)
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Keep      int // number of remote backups to retain
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("CARTERA_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:             absDataDir,
		Port:                getEnvAsInt("PORT", 8080),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		PrimaryCurrency:     getEnv("PRIMARY_CURRENCY", "USD"),
		SecondaryCurrency:   getEnv("SECONDARY_CURRENCY", "ARS"),
		FallbackRate:        getEnvAsFloat("FALLBACK_EXCHANGE_RATE", 1150.0),
		MarketDataBaseURL:   getEnv("MARKET_DATA_URL", "https://query1.finance.yahoo.com"),
		ExchangeRateBaseURL: getEnv("EXCHANGE_RATE_URL", "https://api.exchangerate-api.com/v4/latest"),
		StreamInterval:      getEnvAsDuration("STREAM_INTERVAL", 30*time.Second),
		Backup:              loadBackupConfig(),
	}

	return cfg, nil
}

func loadBackupConfig() *BackupConfig {
	return &BackupConfig{
		Enabled:   getEnvAsBool("BACKUP_ENABLED", false),
		Schedule:  getEnv("BACKUP_SCHEDULE", "0 0 4 * * *"), // 04:00 daily
		Endpoint:  getEnv("BACKUP_S3_ENDPOINT", ""),
		Region:    getEnv("BACKUP_S3_REGION", "auto"),
		Bucket:    getEnv("BACKUP_S3_BUCKET", ""),
		AccessKey: getEnv("BACKUP_S3_ACCESS_KEY", ""),
		SecretKey: getEnv("BACKUP_S3_SECRET_KEY", ""),
		Keep:      getEnvAsInt("BACKUP_KEEP", 14),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
