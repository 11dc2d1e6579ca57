package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/runnerr0/viewtally/internal/logger"
	"github.com/runnerr0/viewtally/internal/metrics"
	"github.com/runnerr0/viewtally/internal/tracker"
)

const shutdownTimeout = 10 * time.Second

// NewRouter mounts the tracker routes and /metrics. m may be nil.
func NewRouter(svc *tracker.Service, log *slog.Logger, m *metrics.Metrics) *chi.Mux {
	h := NewHandler(svc, log)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	if m != nil {
		r.Use(metrics.RequestMiddleware(m))
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}
	r.Route("/runs", func(r chi.Router) {
		r.Post("/", h.Run)
		r.Get("/current", h.Current)
	})
	r.Get("/history", h.History)
	r.Delete("/history", h.ClearHistory)
	return r
}

// ListenAndServe serves handler on addr until ctx is done, then drains
// connections for up to shutdownTimeout.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, log *slog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	log.Info("server starting", slog.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received, draining connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
