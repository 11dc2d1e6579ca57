package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/runnerr0/viewtally/internal/aggregate"
	"github.com/runnerr0/viewtally/internal/youtube"
)

// checkJSON is the JSON output structure for the check command.
type checkJSON struct {
	Query          string `json:"query"`
	TotalViews     int64  `json:"total_views"`
	VideoCount     int    `json:"video_count"`
	SearchedAt     string `json:"searched_at"`
	SkippedBatches int    `json:"skipped_batches"`
}

// Execute implements the go-flags Commander interface for CheckCommand.
func (c *CheckCommand) Execute(args []string) error {
	cfg, _, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	log := newLogger(c.globals, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, closeStore, err := openStore(ctx, c.deps, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	query := strings.TrimSpace(c.Query)
	if query == "" && len(args) > 0 {
		query = strings.Join(args, " ")
	}
	svc := newService(c.deps, cfg, store, nil, log)
	if query == "" {
		query = svc.Query()
	}

	var progress aggregate.ProgressFunc
	if !c.globals.JSON {
		progress = func(u aggregate.Update) {
			fmt.Fprintln(os.Stderr, u.Message())
		}
	}

	res, err := svc.Check(ctx, query, progress)
	if err != nil {
		return userError(err)
	}

	if c.globals.JSON {
		return printJSON(checkJSON{
			Query:          query,
			TotalViews:     res.TotalViews,
			VideoCount:     res.VideoCount,
			SearchedAt:     res.SearchedAt.Format(time.RFC3339),
			SkippedBatches: res.SkippedBatches,
		})
	}

	fmt.Printf("Query:         %s\n", query)
	fmt.Printf("Total views:   %s\n", formatNumber(res.TotalViews))
	fmt.Printf("Videos:        %s\n", formatNumber(int64(res.VideoCount)))
	fmt.Printf("Searched at:   %s\n", res.SearchedAt.Local().Format("2006-01-02 15:04:05"))
	if res.SkippedBatches > 0 {
		fmt.Printf("Warning:       %d statistics batch(es) failed, total may be low\n", res.SkippedBatches)
	}
	return nil
}

// userError adds a hint to the errors a user can act on.
func userError(err error) error {
	switch {
	case errors.Is(err, aggregate.ErrMissingCredential):
		return fmt.Errorf("%w: run `viewtally key --set YOUR_KEY` or set YOUTUBE_API_KEY", err)
	case errors.Is(err, youtube.ErrAuthOrQuota):
		return fmt.Errorf("%w: check the API key and the daily quota", err)
	case errors.Is(err, aggregate.ErrNotFound):
		return fmt.Errorf("%w: try a different query", err)
	}
	return err
}
