package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnv reads .env files into the process environment. Missing files are
// not an error; variables already set win over the file.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// ApplyEnv overlays environment overrides onto cfg.
func (c *Config) ApplyEnv() {
	c.API.Key = GetEnv("YOUTUBE_API_KEY", c.API.Key)
	c.API.BaseURL = GetEnv("VIEWTALLY_API_BASE_URL", c.API.BaseURL)
	c.Search.Query = GetEnv("VIEWTALLY_QUERY", c.Search.Query)
	c.Search.MaxResults = GetEnvInt("VIEWTALLY_MAX_RESULTS", c.Search.MaxResults)
	c.History.Backend = GetEnv("VIEWTALLY_HISTORY_BACKEND", c.History.Backend)
	c.History.RedisURL = GetEnv("VIEWTALLY_REDIS_URL", c.History.RedisURL)
	c.History.MongoURI = GetEnv("VIEWTALLY_MONGO_URI", c.History.MongoURI)
	c.Server.Port = GetEnvInt("VIEWTALLY_PORT", c.Server.Port)
	c.Logging.Level = GetEnv("VIEWTALLY_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = GetEnv("VIEWTALLY_LOG_FORMAT", c.Logging.Format)
}
