package youtube

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DefaultBaseURL is the YouTube Data API v3 root.
const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

// MaxBatchSize is the upstream limit on ids per videos.list call and on
// maxResults per search.list call.
const MaxBatchSize = 50

const (
	searchEndpoint = "search"
	videosEndpoint = "videos"
)

// Request describes one upstream GET call: an endpoint relative to the API
// root plus its query parameters.
type Request struct {
	Endpoint string
	Params   url.Values
}

// URL joins the request onto baseURL.
func (r Request) URL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/" + r.Endpoint + "?" + r.Params.Encode()
}

// BuildSearchRequest returns the search.list request for one page of query
// results. An empty cursor requests the first page.
func BuildSearchRequest(credential, query, cursor string, pageSize int) Request {
	params := url.Values{}
	params.Set("key", credential)
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("part", "id,snippet")
	params.Set("maxResults", strconv.Itoa(pageSize))
	params.Set("order", "relevance")
	params.Set("safeSearch", "none")
	params.Set("videoDefinition", "any")
	params.Set("videoDuration", "any")
	params.Set("videoEmbeddable", "any")
	params.Set("videoSyndicated", "any")
	if cursor != "" {
		params.Set("pageToken", cursor)
	}
	return Request{Endpoint: searchEndpoint, Params: params}
}

// BuildStatisticsRequest returns the videos.list request fetching view
// statistics for ids. It fails with ErrInvalidBatch unless
// 1 <= len(ids) <= MaxBatchSize.
func BuildStatisticsRequest(credential string, ids []string) (Request, error) {
	if len(ids) == 0 || len(ids) > MaxBatchSize {
		return Request{}, fmt.Errorf("%w: %d ids", ErrInvalidBatch, len(ids))
	}
	params := url.Values{}
	params.Set("key", credential)
	params.Set("part", "statistics")
	params.Set("id", strings.Join(ids, ","))
	return Request{Endpoint: videosEndpoint, Params: params}, nil
}
