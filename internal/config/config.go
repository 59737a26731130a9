package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Port        string
	ModelName   string
	Provider    string
	DatabaseURL string
	IndexPath   string
	TopK        int
	CacheTTL    time.Duration
}

// Load reads the configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		ModelName:   getEnv("MODEL_NAME", "deepseek/deepseek-chat"),
		Provider:    getEnv("PROVIDER", "deepseek"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		IndexPath:   getEnv("INDEX_PATH", "db-data/index.gob"),
		TopK:        getEnvInt("TOP_K", 5),
		CacheTTL:    time.Duration(getEnvInt("CACHE_TTL_HOURS", 24)) * time.Hour,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return defaultValue
	}
	return n
}
