package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string
	// Storage selection
	Store       string // "postgres" or "memory"
	BlobBackend string // "local", "postgres" or "memory"
	BlobDir     string
	// Timeouts and limits
	LockTimeout    time.Duration
	BlobTimeout    time.Duration
	MaxUploadBytes int64
	// Logging and metrics
	LogDir         string
	LogMaxFiles    int
	MetricsEnabled bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	databaseURL := getEnv("DATABASE_URL", "")

	return &Config{
		Port:           getEnv("PORT", "8000"),
		Environment:    env,
		DatabaseURL:    databaseURL,
		CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:5173"),
		TablePrefix:    getTablePrefix(env),
		Store:          getEnv("STORE", getDefaultStore(databaseURL)),
		BlobBackend:    getEnv("BLOB_BACKEND", "local"),
		BlobDir:        getEnv("BLOB_DIR", "./data/blobs"),
		LockTimeout:    getDuration("LOCK_TIMEOUT", 5*time.Second),
		BlobTimeout:    getDuration("BLOB_TIMEOUT", 30*time.Second),
		MaxUploadBytes: getInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),
		LogDir:         getEnv("LOG_DIR", ""),
		LogMaxFiles:    int(getInt64("LOG_MAX_FILES", 10)),
		MetricsEnabled: getBool("METRICS_ENABLED", true),
	}
}

// getDefaultStore picks postgres whenever a database is configured
func getDefaultStore(databaseURL string) string {
	if databaseURL != "" {
		return "postgres"
	}
	return "memory"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
