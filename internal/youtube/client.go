package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client talks to the search.list and videos.list endpoints. The credential
// is passed per call so one Client can serve keys that change at runtime.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRequestsPerSecond caps the overall call rate across both endpoints.
// Zero or negative disables the cap.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = nil
		}
	}
}

// NewClient returns a Client for DefaultBaseURL with a 15 second timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Search fetches one page of results for query.
func (c *Client) Search(ctx context.Context, credential, query, cursor string, pageSize int) (*SearchPage, error) {
	req := BuildSearchRequest(credential, query, cursor, pageSize)

	var out searchResponse
	if err := c.get(ctx, req, &out); err != nil {
		return nil, err
	}

	page := &SearchPage{
		Videos:     make([]Video, 0, len(out.Items)),
		NextCursor: out.NextPageToken,
	}
	for _, item := range out.Items {
		if item.ID.VideoID == "" {
			continue
		}
		page.Videos = append(page.Videos, Video{
			ID:          item.ID.VideoID,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
		})
	}
	return page, nil
}

// Statistics fetches view counts for a batch of at most MaxBatchSize ids.
// Ids unknown to the upstream are simply absent from the result.
func (c *Client) Statistics(ctx context.Context, credential string, ids []string) ([]VideoStatistics, error) {
	req, err := BuildStatisticsRequest(credential, ids)
	if err != nil {
		return nil, err
	}

	var out videosResponse
	if err := c.get(ctx, req, &out); err != nil {
		return nil, err
	}

	stats := make([]VideoStatistics, 0, len(out.Items))
	for _, item := range out.Items {
		stats = append(stats, VideoStatistics{
			ID:        item.ID,
			ViewCount: ParseViewCount(item.Statistics.ViewCount),
		})
	}
	return stats, nil
}

func (c *Client) get(ctx context.Context, r Request, into any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL(c.baseURL), nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", r.Endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &transportError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return classifyStatus(resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", ErrUpstream, r.Endpoint, err)
	}
	return nil
}
