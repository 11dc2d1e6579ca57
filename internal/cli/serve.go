package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/runnerr0/viewtally/internal/metrics"
	"github.com/runnerr0/viewtally/internal/server"
)

// Execute implements the go-flags Commander interface for ServeCommand.
func (c *ServeCommand) Execute(args []string) error {
	cfg, _, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	log := newLogger(c.globals, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, c.deps, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	met := metrics.New()
	svc := newService(c.deps, cfg, store, met, log)
	return server.ListenAndServe(ctx, cfg.Server.Addr(), server.NewRouter(svc, log, met), log)
}
