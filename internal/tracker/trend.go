package tracker

import "github.com/runnerr0/viewtally/internal/storage"

// Trend summarizes how the total views moved across a history.
type Trend struct {
	Runs          int     `json:"runs"`
	FirstViews    int64   `json:"first_views"`
	LastViews     int64   `json:"last_views"`
	PeakViews     int64   `json:"peak_views"`
	Change        int64   `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	SincePrevious int64   `json:"since_previous"`
}

// ComputeTrend compares the first and last entries of an oldest-first history.
// ChangePercent stays 0 when the first run counted no views.
func ComputeTrend(entries []storage.Entry) Trend {
	var t Trend
	t.Runs = len(entries)
	if t.Runs == 0 {
		return t
	}

	first, last := entries[0], entries[len(entries)-1]
	t.FirstViews = first.TotalViews
	t.LastViews = last.TotalViews
	t.Change = last.TotalViews - first.TotalViews
	if first.TotalViews > 0 {
		t.ChangePercent = float64(t.Change) / float64(first.TotalViews) * 100
	}
	if t.Runs > 1 {
		t.SincePrevious = last.TotalViews - entries[len(entries)-2].TotalViews
	}
	for _, e := range entries {
		if e.TotalViews > t.PeakViews {
			t.PeakViews = e.TotalViews
		}
	}
	return t
}
