package service

import (
	"context"
	"strings"
	"sync/atomic"
	"time"
)

// SuggestionFetcher turns partial search text into completion strings
// from the remote store. Calls are debounced so that rapid keystrokes
// collapse to at most one remote call per pause, and a newer call always
// supersedes an older in-flight one: superseded calls return a nil slice
// and nil error so stale suggestions are never displayed.
type SuggestionFetcher struct {
	api      PropertyAPI
	debounce time.Duration
	limit    int
	seq      atomic.Uint64
}

// NewSuggestionFetcher creates a fetcher with the given debounce window
// and per-request suggestion limit.
func NewSuggestionFetcher(api PropertyAPI, debounce time.Duration, limit int) *SuggestionFetcher {
	return &SuggestionFetcher{
		api:      api,
		debounce: debounce,
		limit:    limit,
	}
}

// Fetch waits out the debounce window and then queries suggestions for
// the given partial text. It returns (nil, nil) when a newer Fetch was
// issued while this one was pending; the caller discards that result.
func (s *SuggestionFetcher) Fetch(ctx context.Context, partialText string) ([]string, error) {
	if strings.TrimSpace(partialText) == "" {
		return nil, nil
	}

	mySeq := s.seq.Add(1)

	if s.debounce > 0 {
		timer := time.NewTimer(s.debounce)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if s.seq.Load() != mySeq {
		return nil, nil
	}

	suggestions, err := s.api.Suggest(ctx, partialText, s.limit)
	if err != nil {
		return nil, err
	}

	// Last write wins: a response arriving after a newer request started
	// is discarded, not displayed.
	if s.seq.Load() != mySeq {
		return nil, nil
	}
	return suggestions, nil
}
