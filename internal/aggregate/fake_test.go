package aggregate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/runnerr0/viewtally/internal/youtube"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Credential = "test-key"
	cfg.PageDelay = 0
	cfg.BatchDelay = 0
	return cfg
}

// fakeAPI serves scripted search pages (by call order) and statistics.
type fakeAPI struct {
	mu sync.Mutex

	pages     []*youtube.SearchPage
	searchErr map[int]error // keyed by 0-based search call
	views     map[string]int64
	statsErr  map[int]error // keyed by 0-based statistics call

	searchCalls  int
	cursors      []string
	statsCalls   int
	statsBatches [][]string

	// block, when set, is waited on inside Search.
	block chan struct{}
	// latency is slept inside every call.
	latency time.Duration
	// calls records when each call started and returned, in call order.
	calls []span
}

type span struct{ start, end time.Time }

func (f *fakeAPI) record(start time.Time) {
	f.calls = append(f.calls, span{start: start, end: time.Now()})
}

func (f *fakeAPI) Search(ctx context.Context, credential, query, cursor string, pageSize int) (*youtube.SearchPage, error) {
	start := time.Now()
	if f.block != nil {
		<-f.block
	}
	time.Sleep(f.latency)
	f.mu.Lock()
	defer f.mu.Unlock()
	defer f.record(start)

	n := f.searchCalls
	f.searchCalls++
	f.cursors = append(f.cursors, cursor)
	if err := f.searchErr[n]; err != nil {
		return nil, err
	}
	if n >= len(f.pages) {
		return &youtube.SearchPage{}, nil
	}
	return f.pages[n], nil
}

func (f *fakeAPI) Statistics(ctx context.Context, credential string, ids []string) ([]youtube.VideoStatistics, error) {
	start := time.Now()
	time.Sleep(f.latency)
	f.mu.Lock()
	defer f.mu.Unlock()
	defer f.record(start)

	n := f.statsCalls
	f.statsCalls++
	f.statsBatches = append(f.statsBatches, append([]string(nil), ids...))
	if err := f.statsErr[n]; err != nil {
		return nil, err
	}
	out := make([]youtube.VideoStatistics, 0, len(ids))
	for _, id := range ids {
		if v, ok := f.views[id]; ok {
			out = append(out, youtube.VideoStatistics{ID: id, ViewCount: v})
		}
	}
	return out, nil
}

// page builds a search page; titles map to ids v<prefix><i>.
func page(next string, videos ...youtube.Video) *youtube.SearchPage {
	return &youtube.SearchPage{Videos: videos, NextCursor: next}
}

func hit(id string) youtube.Video {
	return youtube.Video{ID: id, Title: "HARIBOW " + id}
}

func miss(id string) youtube.Video {
	return youtube.Video{ID: id, Title: "unrelated " + id}
}

// hits returns n matching videos with ids prefix0..prefix(n-1).
func hits(prefix string, n int) []youtube.Video {
	out := make([]youtube.Video, n)
	for i := range out {
		out[i] = hit(prefix + strconv.Itoa(i))
	}
	return out
}

func ids(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return out
}
