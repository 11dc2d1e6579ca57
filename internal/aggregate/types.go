package aggregate

import (
	"context"
	"errors"
	"time"

	"github.com/runnerr0/viewtally/internal/youtube"
)

var (
	// ErrNotFound: the search finished without a single matching video.
	ErrNotFound = errors.New("no matching videos found")
	// ErrRunInProgress: Run was called while another run is active.
	ErrRunInProgress = errors.New("a run is already in progress")
	// ErrMissingCredential: no API key was configured.
	ErrMissingCredential = errors.New("api key is not configured")
	// ErrEmptyQuery: the query has no searchable text.
	ErrEmptyQuery = errors.New("query is empty")
)

// SearchAPI is the paginated search call the Searcher drives.
type SearchAPI interface {
	Search(ctx context.Context, credential, query, cursor string, pageSize int) (*youtube.SearchPage, error)
}

// StatisticsAPI is the batched view-count lookup the Counter drives.
type StatisticsAPI interface {
	Statistics(ctx context.Context, credential string, ids []string) ([]youtube.VideoStatistics, error)
}

// API is everything a full run needs from the upstream. *youtube.Client satisfies it.
type API interface {
	SearchAPI
	StatisticsAPI
}

// Config holds the limits and pacing for one run.
type Config struct {
	Credential string
	ResultCap  int           // stop once this many videos matched
	PageCap    int           // never fetch more search pages than this
	PageSize   int           // maxResults per search page
	PageDelay  time.Duration // pause between search pages
	BatchSize  int           // ids per statistics call
	BatchDelay time.Duration // pause between statistics calls
}

// DefaultConfig mirrors the upstream's per-call limits.
func DefaultConfig() Config {
	return Config{
		ResultCap:  250,
		PageCap:    20,
		PageSize:   youtube.MaxBatchSize,
		PageDelay:  200 * time.Millisecond,
		BatchSize:  youtube.MaxBatchSize,
		BatchDelay: 150 * time.Millisecond,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.ResultCap <= 0 {
		c.ResultCap = d.ResultCap
	}
	if c.PageCap <= 0 {
		c.PageCap = d.PageCap
	}
	if c.PageSize <= 0 || c.PageSize > youtube.MaxBatchSize {
		c.PageSize = d.PageSize
	}
	if c.BatchSize <= 0 || c.BatchSize > youtube.MaxBatchSize {
		c.BatchSize = d.BatchSize
	}
	return c
}

// Result is the outcome of one completed run.
type Result struct {
	TotalViews     int64     `json:"total_views"`
	VideoCount     int       `json:"video_count"`
	SearchedAt     time.Time `json:"searched_at"`
	SkippedBatches int       `json:"skipped_batches"`
}

// Tally is what the Counter accumulated over all batches.
type Tally struct {
	Total          int64
	Processed      int
	SkippedBatches int
	Videos         []youtube.VideoStatistics
}
