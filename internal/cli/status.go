package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/runnerr0/viewtally/internal/config"
	"github.com/runnerr0/viewtally/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version        string `json:"version"`
	ConfigPath     string `json:"config_path"`
	Query          string `json:"query"`
	KeyConfigured  bool   `json:"key_configured"`
	HistoryBackend string `json:"history_backend"`
	HistoryLimit   int    `json:"history_limit"`
	HistoryRuns    int    `json:"history_runs"`
	LastRun        string `json:"last_run,omitempty"`
	LastTotalViews int64  `json:"last_total_views,omitempty"`
	ServerRunning  bool   `json:"server_running"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	cfg, path, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	ctx := context.Background()

	store, closeStore, err := openStore(ctx, c.deps, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	entries, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}

	running := checkServer(cfg.Server)

	if c.globals.JSON {
		return c.printStatusJSON(cfg, path, entries, running)
	}
	return c.printStatusHuman(cfg, path, entries, running)
}

func (c *StatusCommand) printStatusHuman(cfg *config.Config, path string, entries []storage.Entry, running bool) error {
	fmt.Println("viewtally Status")
	fmt.Println("================")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Config:        %s\n", path)
	fmt.Printf("Query:         %s\n", cfg.Search.Query)
	fmt.Printf("API key:       %s\n", maskKey(cfg.API.Key))
	fmt.Printf("History:       %s (%d of %d runs kept)\n", cfg.History.Backend, len(entries), cfg.History.Limit)

	if n := len(entries); n > 0 {
		last := entries[n-1]
		fmt.Printf("Last run:      %s\n", last.Timestamp.Local().Format("2006-01-02 15:04"))
		fmt.Printf("Last total:    %s views in %d videos\n", formatNumber(last.TotalViews), last.VideoCount)
	}

	fmt.Println()
	if running {
		fmt.Printf("Server:        running on %s\n", cfg.Server.Addr())
	} else {
		fmt.Println("Server:        not running")
	}
	return nil
}

func (c *StatusCommand) printStatusJSON(cfg *config.Config, path string, entries []storage.Entry, running bool) error {
	out := statusJSON{
		Version:        c.version,
		ConfigPath:     path,
		Query:          cfg.Search.Query,
		KeyConfigured:  cfg.API.Key != "",
		HistoryBackend: cfg.History.Backend,
		HistoryLimit:   cfg.History.Limit,
		HistoryRuns:    len(entries),
		ServerRunning:  running,
	}
	if n := len(entries); n > 0 {
		out.LastRun = entries[n-1].Timestamp.UTC().Format(time.RFC3339)
		out.LastTotalViews = entries[n-1].TotalViews
	}
	return printJSON(out)
}

// checkServer attempts an HTTP GET to the configured server.
// Returns true if it responds within 1 second.
func checkServer(s config.ServerConfig) bool {
	client := &http.Client{Timeout: 1 * time.Second}
	resp, err := client.Get("http://" + s.Addr() + "/runs/current")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
