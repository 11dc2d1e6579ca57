package youtube

import "strconv"

// Video is one search hit reduced to the fields the keyword filter needs.
type Video struct {
	ID          string
	Title       string
	Description string
}

// SearchPage is one page of search results. NextCursor is empty on the last
// page.
type SearchPage struct {
	Videos     []Video
	NextCursor string
}

// VideoStatistics pairs a video id with its parsed view count.
type VideoStatistics struct {
	ID        string
	ViewCount int64
}

// --- wire types ---

type searchResponse struct {
	Items         []searchItem `json:"items"`
	NextPageToken string       `json:"nextPageToken"`
}

type searchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"snippet"`
}

type videosResponse struct {
	Items []videosItem `json:"items"`
}

type videosItem struct {
	ID         string `json:"id"`
	Statistics struct {
		ViewCount string `json:"viewCount"`
	} `json:"statistics"`
}

// ParseViewCount converts the API's string view count. Missing, malformed
// and negative values count as zero.
func ParseViewCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
