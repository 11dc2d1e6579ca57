package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/runnerr0/viewtally/internal/aggregate"
	"github.com/runnerr0/viewtally/internal/config"
	"github.com/runnerr0/viewtally/internal/logger"
	"github.com/runnerr0/viewtally/internal/metrics"
	"github.com/runnerr0/viewtally/internal/storage"
	"github.com/runnerr0/viewtally/internal/tracker"
	"github.com/runnerr0/viewtally/internal/youtube"
)

// loadConfig resolves the config file (creating it with defaults when
// missing), overlays .env and environment overrides and validates the result.
func loadConfig(globals *GlobalFlags) (*config.Config, string, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, "", fmt.Errorf("load .env: %w", err)
	}

	path, err := config.ResolvePath(globals.Config)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadOrCreateAt(path)
	if err != nil {
		return nil, "", err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, path, nil
}

// newLogger writes to stderr so stdout carries command output only.
func newLogger(globals *GlobalFlags, cfg *config.Config) *slog.Logger {
	level := cfg.Logging.Level
	if globals.Verbose {
		level = "debug"
	}
	return logger.New(level, cfg.Logging.Format, os.Stderr)
}

// openStore returns the injected store, or opens the configured backend.
// The returned func closes only what openStore opened.
func openStore(ctx context.Context, d deps, cfg *config.Config) (storage.Store, func(), error) {
	if d.store != nil {
		return d.store, func() {}, nil
	}
	store, err := storage.Open(ctx, cfg.History)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s history: %w", cfg.History.Backend, err)
	}
	return store, func() { store.Close() }, nil
}

// newService wires the upstream client, orchestrator and store together.
func newService(d deps, cfg *config.Config, store storage.Store, m *metrics.Metrics, log *slog.Logger) *tracker.Service {
	api := d.api
	if api == nil {
		api = youtube.NewClient(
			youtube.WithBaseURL(cfg.API.BaseURL),
			youtube.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout()}),
			youtube.WithRequestsPerSecond(cfg.API.RequestsPerSecond),
		)
	}
	orch := aggregate.NewOrchestrator(api, aggregateConfig(cfg), log)
	return tracker.NewService(orch, store, m, log, cfg.Search.Query)
}

func aggregateConfig(cfg *config.Config) aggregate.Config {
	return aggregate.Config{
		Credential: cfg.API.Key,
		ResultCap:  cfg.Search.MaxResults,
		PageCap:    cfg.Search.MaxPages,
		PageSize:   cfg.Search.PageSize,
		PageDelay:  cfg.Search.PageDelay(),
		BatchSize:  cfg.Statistics.BatchSize,
		BatchDelay: cfg.Statistics.BatchDelay(),
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if i > 0 {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// formatSigned prefixes non-negative numbers with "+".
func formatSigned(n int64) string {
	if n >= 0 {
		return "+" + formatNumber(n)
	}
	return formatNumber(n)
}

// maskKey hides all but the first and last four characters of a key.
func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
