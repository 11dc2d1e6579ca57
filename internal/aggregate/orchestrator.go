package aggregate

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Orchestrator runs search then counting for one query at a time.
// The matched ids and the running total belong to the active run only.
type Orchestrator struct {
	cfg      Config
	searcher *Searcher
	counter  *Counter
	log      *slog.Logger
	now      func() time.Time

	running atomic.Bool
	phase   atomic.Int32
}

// NewOrchestrator wires a Searcher and a Counter over api.
func NewOrchestrator(api API, cfg Config, log *slog.Logger) *Orchestrator {
	cfg = cfg.normalized()
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		cfg:      cfg,
		searcher: NewSearcher(api, cfg, log),
		counter:  NewCounter(api, cfg, log),
		log:      log,
		now:      time.Now,
	}
}

// Phase reports where the current (or last) run is.
func (o *Orchestrator) Phase() Phase {
	return Phase(o.phase.Load())
}

// Running reports whether a run is active.
func (o *Orchestrator) Running() bool {
	return o.running.Load()
}

// Run searches for query, counts the views of every matching video and
// returns the aggregate. Search failures, an empty match set and
// cancellation fail the run; statistics failures only lower the total.
// A second Run while one is active fails with ErrRunInProgress. An empty
// query or a missing credential is rejected before the run starts and
// leaves the phase untouched.
func (o *Orchestrator) Run(ctx context.Context, query string, progress ProgressFunc) (Result, error) {
	if !o.running.CompareAndSwap(false, true) {
		return Result{}, ErrRunInProgress
	}
	defer o.running.Store(false)

	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, ErrEmptyQuery
	}
	if o.cfg.Credential == "" {
		return Result{}, ErrMissingCredential
	}

	o.enter(PhaseSearching, Update{}, progress)
	ids, err := o.searcher.Search(ctx, query, o.cfg.ResultCap, o.cfg.PageCap, progress)
	if err != nil {
		return Result{}, o.fail(err, progress)
	}
	if len(ids) == 0 {
		return Result{}, o.fail(ErrNotFound, progress)
	}

	o.enter(PhaseCounting, Update{Found: len(ids), Total: len(ids)}, progress)
	tally, err := o.counter.Aggregate(ctx, ids, progress)
	if err != nil {
		return Result{}, o.fail(err, progress)
	}

	res := Result{
		TotalViews:     tally.Total,
		VideoCount:     len(ids),
		SearchedAt:     o.now().UTC(),
		SkippedBatches: tally.SkippedBatches,
	}
	o.enter(PhaseDone, Update{Found: len(ids), Processed: tally.Processed, Total: len(ids)}, progress)
	o.log.Info("run finished",
		slog.String("query", query),
		slog.Int64("total_views", res.TotalViews),
		slog.Int("video_count", res.VideoCount),
		slog.Int("skipped_batches", res.SkippedBatches))
	return res, nil
}

func (o *Orchestrator) enter(p Phase, u Update, progress ProgressFunc) {
	o.phase.Store(int32(p))
	u.Kind = EventPhase
	u.Phase = p
	progress.report(u)
}

func (o *Orchestrator) fail(err error, progress ProgressFunc) error {
	o.enter(PhaseFailed, Update{Err: err}, progress)
	o.log.Error("run failed", slog.Any("error", err))
	return err
}
