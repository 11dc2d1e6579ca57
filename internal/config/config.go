package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where the config lives unless --config says otherwise.
const DefaultConfigPath = "~/.config/viewtally/config.yaml"

// Config holds all viewtally configuration.
type Config struct {
	API        APIConfig        `yaml:"api"`
	Search     SearchConfig     `yaml:"search"`
	Statistics StatisticsConfig `yaml:"statistics"`
	History    HistoryConfig    `yaml:"history"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type APIConfig struct {
	Key               string  `yaml:"key"`
	BaseURL           string  `yaml:"base_url"`
	TimeoutSec        int     `yaml:"timeout_sec"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type SearchConfig struct {
	Query       string `yaml:"query"`
	MaxResults  int    `yaml:"max_results"`
	MaxPages    int    `yaml:"max_pages"`
	PageSize    int    `yaml:"page_size"`
	PageDelayMS int    `yaml:"page_delay_ms"`
}

type StatisticsConfig struct {
	BatchSize    int `yaml:"batch_size"`
	BatchDelayMS int `yaml:"batch_delay_ms"`
}

type HistoryConfig struct {
	Backend         string `yaml:"backend"`
	Limit           int    `yaml:"limit"`
	Path            string `yaml:"path"`
	SQLiteFile      string `yaml:"sqlite_file"`
	JournalMode     string `yaml:"sqlite_journal_mode"`
	RedisURL        string `yaml:"redis_url"`
	RedisKey        string `yaml:"redis_key"`
	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// History backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// JournalModes are the SQLite journal modes history.sqlite_journal_mode accepts.
// Empty keeps SQLite's default.
var JournalModes = []string{"wal", "delete", "truncate", "memory", "persist", "off"}

// MinKeyLength is the shortest API key accepted by SetKey.
const MinKeyLength = 10

var (
	ErrKeyEmpty    = errors.New("api key is empty")
	ErrKeyTooShort = fmt.Errorf("api key must be at least %d characters", MinKeyLength)
)

// PageDelay is the pause between search pages.
func (c SearchConfig) PageDelay() time.Duration {
	return time.Duration(c.PageDelayMS) * time.Millisecond
}

// BatchDelay is the pause between statistics batches.
func (c StatisticsConfig) BatchDelay() time.Duration {
	return time.Duration(c.BatchDelayMS) * time.Millisecond
}

// Timeout is the per-call HTTP timeout.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// SQLitePath is the resolved database file location.
func (c HistoryConfig) SQLitePath() (string, error) {
	if c.SQLiteFile == ":memory:" {
		return c.SQLiteFile, nil
	}
	dir, err := ExpandPath(c.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.SQLiteFile), nil
}

// Addr is the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate rejects values the run or the stores cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Search.MaxResults < 1 {
		errs = append(errs, fmt.Errorf("search.max_results must be >= 1, got %d", c.Search.MaxResults))
	}
	if c.Search.MaxPages < 1 {
		errs = append(errs, fmt.Errorf("search.max_pages must be >= 1, got %d", c.Search.MaxPages))
	}
	if c.Search.PageSize < 1 || c.Search.PageSize > 50 {
		errs = append(errs, fmt.Errorf("search.page_size must be in 1..50, got %d", c.Search.PageSize))
	}
	if c.Statistics.BatchSize < 1 || c.Statistics.BatchSize > 50 {
		errs = append(errs, fmt.Errorf("statistics.batch_size must be in 1..50, got %d", c.Statistics.BatchSize))
	}
	if c.Search.PageDelayMS < 0 || c.Statistics.BatchDelayMS < 0 {
		errs = append(errs, errors.New("delays must not be negative"))
	}
	if c.History.Limit < 1 {
		errs = append(errs, fmt.Errorf("history.limit must be >= 1, got %d", c.History.Limit))
	}
	if c.History.JournalMode != "" && !slices.Contains(JournalModes, c.History.JournalMode) {
		errs = append(errs, fmt.Errorf("history.sqlite_journal_mode %q is not one of %s", c.History.JournalMode, strings.Join(JournalModes, ", ")))
	}
	switch c.History.Backend {
	case BackendSQLite, BackendRedis, BackendMongo:
	default:
		errs = append(errs, fmt.Errorf("history.backend %q is not one of sqlite, redis, mongo", c.History.Backend))
	}
	return errors.Join(errs...)
}

// SetKey validates and stores a new API key.
func (c *Config) SetKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrKeyEmpty
	}
	if len(key) < MinKeyLength {
		return ErrKeyTooShort
	}
	c.API.Key = key
	return nil
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// ResolvePath returns path expanded, or the expanded default when empty.
func ResolvePath(path string) (string, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	return ExpandPath(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	return Load(path)
}

// Save writes cfg to path as YAML, readable only by the owner since it may
// hold the API key.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
