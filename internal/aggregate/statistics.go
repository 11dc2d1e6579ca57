package aggregate

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/runnerr0/viewtally/internal/youtube"
)

// Counter sums view counts over a list of ids in fixed-size batches.
type Counter struct {
	api        StatisticsAPI
	credential string
	batchSize  int
	batchDelay time.Duration
	log        *slog.Logger
}

// NewCounter returns a Counter using cfg's credential, batch size and delay.
func NewCounter(api StatisticsAPI, cfg Config, log *slog.Logger) *Counter {
	cfg = cfg.normalized()
	if log == nil {
		log = slog.Default()
	}
	return &Counter{
		api:        api,
		credential: cfg.Credential,
		batchSize:  cfg.BatchSize,
		batchDelay: cfg.BatchDelay,
		log:        log,
	}
}

// Batches splits ids into consecutive chunks of at most size, keeping order.
func Batches(ids []string, size int) [][]string {
	if size <= 0 {
		return nil
	}
	out := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[start:end])
	}
	return out
}

// Aggregate fetches statistics batch by batch and sums the view counts.
// A failed batch is logged and contributes nothing; the remaining batches
// are still attempted. The only error returned is ctx's.
func (c *Counter) Aggregate(ctx context.Context, ids []string, progress ProgressFunc) (Tally, error) {
	var tally Tally
	batches := Batches(ids, c.batchSize)
	pacer := NewPacer(c.batchDelay)

	for i, batch := range batches {
		if err := pacer.Wait(ctx); err != nil {
			return tally, err
		}

		stats, err := c.api.Statistics(ctx, c.credential, batch)
		pacer.Done()
		if err != nil {
			if ctx.Err() != nil {
				return tally, ctx.Err()
			}
			tally.SkippedBatches++
			c.log.Warn("statistics batch skipped",
				slog.Int("batch", i+1),
				slog.Int("batches", len(batches)),
				slog.Any("error", err))
			progress.report(Update{Kind: EventBatchSkipped, Phase: PhaseCounting, Processed: tally.Processed, Total: len(ids), Batch: i + 1, Err: err})
			continue
		}

		for _, s := range stats {
			tally.Total += s.ViewCount
			tally.Processed++
			tally.Videos = append(tally.Videos, s)
		}

		c.log.Debug("statistics batch counted",
			slog.Int("batch", i+1),
			slog.Int("batches", len(batches)),
			slog.Int("items", len(stats)))
		progress.report(Update{Kind: EventBatch, Phase: PhaseCounting, Processed: tally.Processed, Total: len(ids), Batch: i + 1})
	}

	c.log.Info("statistics finished",
		slog.Int("processed", tally.Processed),
		slog.Int64("total_views", tally.Total),
		slog.Int("skipped_batches", tally.SkippedBatches))
	c.logTop(tally.Videos, 10)
	return tally, nil
}

// logTop writes the n most viewed videos at debug level.
func (c *Counter) logTop(videos []youtube.VideoStatistics, n int) {
	if !c.log.Enabled(context.Background(), slog.LevelDebug) || len(videos) == 0 {
		return
	}
	top := make([]youtube.VideoStatistics, len(videos))
	copy(top, videos)
	sort.SliceStable(top, func(i, j int) bool { return top[i].ViewCount > top[j].ViewCount })
	if len(top) > n {
		top = top[:n]
	}
	for rank, v := range top {
		c.log.Debug("top video", slog.Int("rank", rank+1), slog.String("id", v.ID), slog.Int64("views", v.ViewCount))
	}
}
