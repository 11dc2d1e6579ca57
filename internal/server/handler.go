package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/runnerr0/viewtally/internal/aggregate"
	"github.com/runnerr0/viewtally/internal/storage"
	"github.com/runnerr0/viewtally/internal/tracker"
	"github.com/runnerr0/viewtally/internal/youtube"
)

// Handler exposes the tracker over HTTP.
type Handler struct {
	svc *tracker.Service
	log *slog.Logger
}

// NewHandler returns a Handler backed by svc.
func NewHandler(svc *tracker.Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type runRequest struct {
	Query string `json:"query"`
}

type phaseResponse struct {
	Phase   aggregate.Phase `json:"phase"`
	Running bool            `json:"running"`
}

type historyResponse struct {
	Entries []storage.Entry `json:"entries"`
	Trend   tracker.Trend   `json:"trend"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Run handles POST /runs. The query comes from ?query= or a JSON body
// {"query": "..."}; both empty means the configured query.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" && r.Body != nil {
		var body runRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			h.log.Debug("invalid run body", slog.String("error", err.Error()))
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}
		query = strings.TrimSpace(body.Query)
	}

	res, err := h.svc.Check(r.Context(), query, nil)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.log.Error("run failed", slog.String("error", err.Error()))
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Current handles GET /runs/current.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, phaseResponse{Phase: h.svc.Phase(), Running: h.svc.Running()})
}

// History handles GET /history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.History(r.Context())
	if err != nil {
		h.log.Error("list history failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not read history"})
		return
	}
	if entries == nil {
		entries = []storage.Entry{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Entries: entries, Trend: tracker.ComputeTrend(entries)})
}

// ClearHistory handles DELETE /history.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearHistory(r.Context()); err != nil {
		h.log.Error("clear history failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not clear history"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// statusFor maps run errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, aggregate.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, aggregate.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, aggregate.ErrMissingCredential):
		return http.StatusUnauthorized
	case errors.Is(err, aggregate.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, youtube.ErrAuthOrQuota),
		errors.Is(err, youtube.ErrBadRequest),
		errors.Is(err, youtube.ErrUpstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
