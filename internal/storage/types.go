package storage

import (
	"context"
	"time"
)

// DefaultLimit is how many history entries a store keeps.
const DefaultLimit = 30

// Entry is one recorded run: when it happened and what it counted.
type Entry struct {
	Timestamp  time.Time `json:"timestamp" bson:"timestamp"`
	TotalViews int64     `json:"total_views" bson:"total_views"`
	VideoCount int       `json:"video_count" bson:"video_count"`
}

// Store persists the run history as a capped, oldest-first list.
type Store interface {
	// Append records e and evicts the oldest entries beyond the limit.
	Append(ctx context.Context, e Entry) error
	// List returns the retained entries, oldest first.
	List(ctx context.Context) ([]Entry, error)
	// Clear deletes every entry.
	Clear(ctx context.Context) error
	Close() error
}

// Cap keeps the most recent limit entries of an oldest-first slice.
func Cap(entries []Entry, limit int) []Entry {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(entries) <= limit {
		return entries
	}
	return entries[len(entries)-limit:]
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
