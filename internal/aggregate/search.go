package aggregate

import (
	"context"
	"log/slog"
	"time"
)

// Searcher walks search pages for a query and keeps the ids of videos whose
// title or description contains the query as a whole word.
type Searcher struct {
	api        SearchAPI
	credential string
	pageSize   int
	pageDelay  time.Duration
	log        *slog.Logger
}

// NewSearcher returns a Searcher using cfg's credential, page size and delay.
func NewSearcher(api SearchAPI, cfg Config, log *slog.Logger) *Searcher {
	cfg = cfg.normalized()
	if log == nil {
		log = slog.Default()
	}
	return &Searcher{
		api:        api,
		credential: cfg.Credential,
		pageSize:   cfg.PageSize,
		pageDelay:  cfg.PageDelay,
		log:        log,
	}
}

// Search returns matching video ids in discovery order, each at most once
// and never more than resultCap of them. At most pageCap pages are fetched.
// It stops early on an empty page or a page without a continuation cursor.
// Any failed page call aborts the search with that call's error.
func (s *Searcher) Search(ctx context.Context, query string, resultCap, pageCap int, progress ProgressFunc) ([]string, error) {
	matcher := NewMatcher(query)
	pacer := NewPacer(s.pageDelay)

	seen := make(map[string]struct{})
	matched := make([]string, 0)
	cursor := ""
	pages := 0
	scanned := 0

	for len(matched) < resultCap && pages < pageCap {
		if err := pacer.Wait(ctx); err != nil {
			return nil, err
		}

		page, err := s.api.Search(ctx, s.credential, query, cursor, s.pageSize)
		pacer.Done()
		if err != nil {
			s.log.Error("search page failed", slog.Int("page", pages+1), slog.Any("error", err))
			return nil, err
		}
		pages++

		if len(page.Videos) == 0 {
			s.log.Debug("search page empty, stopping", slog.Int("page", pages))
			break
		}

		scanned += len(page.Videos)
		inPage := 0
		for _, v := range page.Videos {
			if _, dup := seen[v.ID]; dup {
				continue
			}
			seen[v.ID] = struct{}{}

			if !matcher.MatchVideo(v) {
				continue
			}
			matched = append(matched, v.ID)
			inPage++
			s.log.Debug("video matched", slog.Int("n", len(matched)), slog.String("title", v.Title))
			if len(matched) >= resultCap {
				break
			}
		}

		s.log.Debug("search page processed",
			slog.Int("page", pages),
			slog.Int("matched", inPage),
			slog.Int("items", len(page.Videos)),
			slog.Int("found", len(matched)),
			slog.Int("scanned", scanned))
		progress.report(Update{Kind: EventPage, Phase: PhaseSearching, Found: len(matched), Pages: pages})

		if page.NextCursor == "" {
			s.log.Debug("pagination exhausted", slog.Int("pages", pages))
			break
		}
		cursor = page.NextCursor
	}

	s.log.Info("search finished", slog.Int("found", len(matched)), slog.Int("pages", pages))
	return matched, nil
}
