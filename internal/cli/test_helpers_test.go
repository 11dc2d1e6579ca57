package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/runnerr0/viewtally/internal/config"
	"github.com/runnerr0/viewtally/internal/storage"
	"github.com/runnerr0/viewtally/internal/youtube"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// writeTestConfig saves a config with a test key and no pacing into a temp
// dir and returns its path. Environment overrides are cleared.
func writeTestConfig(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()
	for _, k := range []string{"YOUTUBE_API_KEY", "VIEWTALLY_QUERY", "VIEWTALLY_HISTORY_BACKEND", "VIEWTALLY_PORT"} {
		t.Setenv(k, "")
	}

	cfg := config.DefaultConfig()
	cfg.API.Key = "test-key-0123456789"
	cfg.Search.PageDelayMS = 0
	cfg.Statistics.BatchDelayMS = 0
	cfg.History.Path = t.TempDir()
	cfg.Server.Port = 1
	cfg.Logging.Level = "error"
	if mutate != nil {
		mutate(cfg)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.Save(path, cfg))
	return path
}

// openTestStore creates a migrated in-memory history store.
func openTestStore(t *testing.T) storage.Store {
	t.Helper()
	s, err := storage.OpenSQLite(context.Background(), ":memory:", "", storage.DefaultLimit)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedHistory(t *testing.T, s storage.Store, views ...int64) {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, v := range views {
		require.NoError(t, s.Append(context.Background(), storage.Entry{
			Timestamp:  base.Add(time.Duration(i) * time.Hour),
			TotalViews: v,
			VideoCount: i + 1,
		}))
	}
}

// fakeAPI serves a single page of videos and fixed view counts.
type fakeAPI struct {
	videos   []youtube.Video
	views    map[string]int64
	err      error
	lastTerm string
}

func (f *fakeAPI) Search(_ context.Context, _, query, _ string, _ int) (*youtube.SearchPage, error) {
	f.lastTerm = query
	if f.err != nil {
		return nil, f.err
	}
	return &youtube.SearchPage{Videos: f.videos}, nil
}

func (f *fakeAPI) Statistics(_ context.Context, _ string, ids []string) ([]youtube.VideoStatistics, error) {
	out := make([]youtube.VideoStatistics, 0, len(ids))
	for _, id := range ids {
		out = append(out, youtube.VideoStatistics{ID: id, ViewCount: f.views[id]})
	}
	return out, nil
}

func haribowAPI() *fakeAPI {
	return &fakeAPI{
		videos: []youtube.Video{
			{ID: "a", Title: "HARIBOW live"},
			{ID: "b", Title: "clip", Description: "more haribow"},
			{ID: "c", Title: "HARIBOWS"},
		},
		views: map[string]int64{"a": 1200000, "b": 34567, "c": 5},
	}
}
