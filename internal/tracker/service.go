package tracker

import (
	"context"
	"log/slog"

	"github.com/runnerr0/viewtally/internal/aggregate"
	"github.com/runnerr0/viewtally/internal/metrics"
	"github.com/runnerr0/viewtally/internal/storage"
)

// Service runs aggregations for a query and keeps their history.
type Service struct {
	orch    *aggregate.Orchestrator
	store   storage.Store
	metrics *metrics.Metrics
	log     *slog.Logger
	query   string
}

// NewService returns a Service that checks query by default.
// Metrics may be nil to disable metric recording (e.g. in tests).
func NewService(orch *aggregate.Orchestrator, store storage.Store, m *metrics.Metrics, log *slog.Logger, query string) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{orch: orch, store: store, metrics: m, log: log, query: query}
}

// Query is the query Check uses when none is given.
func (s *Service) Query() string { return s.query }

// Check runs one aggregation for query (the configured query when empty) and
// records it in the history. A failed history write is logged and the result
// is still returned.
func (s *Service) Check(ctx context.Context, query string, progress aggregate.ProgressFunc) (aggregate.Result, error) {
	if query == "" {
		query = s.query
	}

	res, err := s.orch.Run(ctx, query, s.observe(progress))
	if s.metrics != nil {
		s.metrics.RecordRun(res, err)
	}
	if err != nil {
		return aggregate.Result{}, err
	}

	if err := s.store.Append(ctx, EntryFromResult(res)); err != nil {
		s.log.Warn("history write failed", slog.Any("error", err))
	}
	return res, nil
}

// observe chains metric recording in front of the caller's progress func.
func (s *Service) observe(progress aggregate.ProgressFunc) aggregate.ProgressFunc {
	return func(u aggregate.Update) {
		if s.metrics != nil {
			s.metrics.Observe(u)
		}
		if progress != nil {
			progress(u)
		}
	}
}

// History returns the retained entries, oldest first.
func (s *Service) History(ctx context.Context) ([]storage.Entry, error) {
	return s.store.List(ctx)
}

// ClearHistory deletes every entry.
func (s *Service) ClearHistory(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// Phase reports the orchestrator's current phase.
func (s *Service) Phase() aggregate.Phase {
	return s.orch.Phase()
}

// Running reports whether a check is in flight.
func (s *Service) Running() bool {
	return s.orch.Running()
}

// EntryFromResult derives the history entry recorded for a run.
func EntryFromResult(res aggregate.Result) storage.Entry {
	return storage.Entry{
		Timestamp:  res.SearchedAt,
		TotalViews: res.TotalViews,
		VideoCount: res.VideoCount,
	}
}
