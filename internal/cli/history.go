package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/runnerr0/viewtally/internal/storage"
	"github.com/runnerr0/viewtally/internal/tracker"
)

const chartWidth = 40

// historyJSON is the JSON output structure for the history command.
type historyJSON struct {
	Entries []storage.Entry `json:"entries"`
	Trend   tracker.Trend   `json:"trend"`
}

// Execute implements the go-flags Commander interface for HistoryCommand.
func (c *HistoryCommand) Execute(args []string) error {
	cfg, _, err := loadConfig(c.globals)
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
		return err
	}
	if entries == nil {
		entries = []storage.Entry{}
	}
	trend := tracker.ComputeTrend(entries)

	if c.globals.JSON {
		return printJSON(historyJSON{Entries: entries, Trend: trend})
	}

	if len(entries) == 0 {
		fmt.Println("No history yet. Run `viewtally check` to record a count.")
		return nil
	}

	fmt.Printf("History (%d runs)\n", len(entries))
	fmt.Println(strings.Repeat("=", 17))
	for _, e := range entries {
		fmt.Printf("%s  %15s  %4d videos  %s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04"),
			formatNumber(e.TotalViews),
			e.VideoCount,
			bar(e.TotalViews, trend.PeakViews, chartWidth))
	}

	fmt.Println()
	fmt.Printf("Change:        %s", formatSigned(trend.Change))
	if trend.FirstViews > 0 {
		fmt.Printf(" (%+.1f%%)", trend.ChangePercent)
	}
	fmt.Println()
	if trend.Runs > 1 {
		fmt.Printf("Since last:    %s\n", formatSigned(trend.SincePrevious))
	}
	fmt.Printf("Peak:          %s\n", formatNumber(trend.PeakViews))
	return nil
}

// bar renders v as a run of blocks scaled so that peak fills width.
func bar(v, peak int64, width int) string {
	if peak <= 0 || v <= 0 {
		return ""
	}
	n := int(v * int64(width) / peak)
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}
