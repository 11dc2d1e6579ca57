package aggregate

import "fmt"

// EventKind tells a progress listener what just happened.
type EventKind int

const (
	EventPhase        EventKind = iota // phase transition
	EventPage                          // one search page processed
	EventBatch                         // one statistics batch counted
	EventBatchSkipped                  // one statistics batch failed and was skipped
)

// Update is a single progress notification.
type Update struct {
	Kind      EventKind
	Phase     Phase
	Found     int // videos matched so far
	Pages     int // search pages fetched so far
	Processed int // videos with statistics so far
	Total     int // videos to count
	Batch     int // 1-based batch number, batch events only
	Err       error
}

// Message renders the update as one line of text.
func (u Update) Message() string {
	switch u.Kind {
	case EventPage:
		return fmt.Sprintf("found %d videos (%d pages searched)", u.Found, u.Pages)
	case EventBatch:
		return fmt.Sprintf("counting views... %d/%d videos done", u.Processed, u.Total)
	case EventBatchSkipped:
		return fmt.Sprintf("batch %d skipped: %v", u.Batch, u.Err)
	}
	switch u.Phase {
	case PhaseSearching:
		return "searching videos..."
	case PhaseCounting:
		return fmt.Sprintf("fetching view counts for %d videos...", u.Total)
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return fmt.Sprintf("failed: %v", u.Err)
	}
	return u.Phase.String()
}

// ProgressFunc receives fire-and-forget progress notifications.
type ProgressFunc func(Update)

func (f ProgressFunc) report(u Update) {
	if f != nil {
		f(u)
	}
}
