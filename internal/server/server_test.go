package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/viewtally/internal/aggregate"
	"github.com/runnerr0/viewtally/internal/logger"
	"github.com/runnerr0/viewtally/internal/metrics"
	"github.com/runnerr0/viewtally/internal/storage"
	"github.com/runnerr0/viewtally/internal/tracker"
	"github.com/runnerr0/viewtally/internal/youtube"
)

// fakeUpstream answers /search with two matching videos and /videos with
// 100 views each. status, when set, is returned for every call instead.
func fakeUpstream(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != 0 {
			http.Error(w, `{"error":{"message":"quota"}}`, status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search":
			if !strings.EqualFold(r.URL.Query().Get("q"), "HARIBOW") {
				fmt.Fprint(w, `{"items":[]}`)
				return
			}
			fmt.Fprint(w, `{"items":[
				{"id":{"videoId":"v1"},"snippet":{"title":"HARIBOW one","description":""}},
				{"id":{"videoId":"v2"},"snippet":{"title":"two","description":"with haribow"}}
			]}`)
		case "/videos":
			ids := strings.Split(r.URL.Query().Get("id"), ",")
			items := make([]string, 0, len(ids))
			for _, id := range ids {
				items = append(items, fmt.Sprintf(`{"id":%q,"statistics":{"viewCount":"100"}}`, id))
			}
			fmt.Fprintf(w, `{"items":[%s]}`, strings.Join(items, ","))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(t *testing.T, upstreamStatus int, credential string) (http.Handler, *metrics.Metrics) {
	t.Helper()
	up := fakeUpstream(t, upstreamStatus)
	log := logger.Discard()

	store, err := storage.OpenSQLite(context.Background(), ":memory:", "", 30)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	client := youtube.NewClient(youtube.WithBaseURL(up.URL), youtube.WithHTTPClient(up.Client()))
	orch := aggregate.NewOrchestrator(client, aggregate.Config{Credential: credential}, log)
	m := metrics.New()
	svc := tracker.NewService(orch, store, m, log, "HARIBOW")
	return NewRouter(svc, log, m), m
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRun_OK(t *testing.T) {
	h, _ := newTestRouter(t, 0, "test-key")

	rec := do(t, h, http.MethodPost, "/runs", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res aggregate.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, int64(200), res.TotalViews)
	assert.Equal(t, 2, res.VideoCount)
	assert.False(t, res.SearchedAt.IsZero())
}

func TestRun_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		upstream   int
		credential string
		path       string
		body       string
		want       int
	}{
		{"no matches", 0, "test-key", "/runs?query=nothing", "", http.StatusNotFound},
		{"query from body", 0, "test-key", "/runs", `{"query":"nothing"}`, http.StatusNotFound},
		{"quota", http.StatusForbidden, "test-key", "/runs", "", http.StatusBadGateway},
		{"upstream down", http.StatusInternalServerError, "test-key", "/runs", "", http.StatusBadGateway},
		{"missing credential", 0, "", "/runs", "", http.StatusUnauthorized},
		{"bad body", 0, "test-key", "/runs", "{", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestRouter(t, tt.upstream, tt.credential)
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestRun_ChunkedEmptyBodyUsesConfiguredQuery(t *testing.T) {
	h, _ := newTestRouter(t, 0, "test-key")

	req := httptest.NewRequest(http.MethodPost, "/runs", io.NopCloser(strings.NewReader("")))
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res aggregate.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 2, res.VideoCount)
}

func TestCurrent(t *testing.T) {
	h, _ := newTestRouter(t, 0, "test-key")

	rec := do(t, h, http.MethodGet, "/runs/current", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"phase":"idle","running":false}`, rec.Body.String())

	do(t, h, http.MethodPost, "/runs", "")
	rec = do(t, h, http.MethodGet, "/runs/current", "")
	assert.JSONEq(t, `{"phase":"done","running":false}`, rec.Body.String())
}

func TestHistoryAndClear(t *testing.T) {
	h, _ := newTestRouter(t, 0, "test-key")

	rec := do(t, h, http.MethodGet, "/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var hist historyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	assert.Empty(t, hist.Entries)
	assert.Contains(t, rec.Body.String(), `"entries":[]`)

	do(t, h, http.MethodPost, "/runs", "")
	do(t, h, http.MethodPost, "/runs", "")

	rec = do(t, h, http.MethodGet, "/history", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	require.Len(t, hist.Entries, 2)
	assert.Equal(t, int64(200), hist.Entries[1].TotalViews)
	assert.Equal(t, 2, hist.Trend.Runs)
	assert.Equal(t, int64(0), hist.Trend.Change)

	rec = do(t, h, http.MethodDelete, "/history", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/history", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	assert.Empty(t, hist.Entries)
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestRouter(t, 0, "test-key")
	do(t, h, http.MethodPost, "/runs", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, `viewtally_runs_total{outcome="success"} 1`)
	assert.Contains(t, out, "viewtally_last_total_views 200")
	assert.Contains(t, out, "viewtally_search_pages_total 1")
	assert.Contains(t, out, `viewtally_statistics_batches_total{result="ok"} 1`)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	h, _ := newTestRouter(t, 0, "test-key")
	log := logger.Discard()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ListenAndServe(ctx, "127.0.0.1:0", h, log) }()
	cancel()
	assert.NoError(t, <-done)
}
