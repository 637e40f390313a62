package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"core/internal/model"

	"github.com/google/uuid"
)

// SearchLogger records executed searches for later feedback correlation.
type SearchLogger interface {
	LogSearch(ctx context.Context, searchID, filterKey string, resultCount int, propertyIDs []int64, tookMs int64) error
}

// VectorSearcher pre-selects image-search candidates by embedding
// distance when the analyzer returns a reference embedding.
type VectorSearcher interface {
	NearestByFeatures(ctx context.Context, embedding []float32, limit int) ([]model.Property, error)
}

// SearchSession is the session-scoped store tying the subsystem together:
// filter state, query cache, voice gate, similarity ranking and
// pagination. One session serves one user surface; Reset restores the
// initial state.
//
// A generation counter guards against stale responses: it is incremented
// on every filter change and image upload, and any response carrying an
// older generation is discarded instead of applied.
type SearchSession struct {
	cache       *QueryCache
	ranker      *Ranker
	analyzer    AnalyzerClient
	suggestions *SuggestionFetcher
	voice       *VoiceController
	searchLog   SearchLogger
	vectors     VectorSearcher
	logger      *slog.Logger

	gen atomic.Uint64

	mu         sync.Mutex
	filters    model.FilterState
	rawPage    *model.SearchPage
	paginator  *Paginator
	imageMode  bool
	analysis   *AnalysisResult
	weights    model.SimilarityWeights
	thresholds model.Thresholds
}

// SearchSessionDeps carries the collaborators a session is built from.
type SearchSessionDeps struct {
	Cache       *QueryCache
	Ranker      *Ranker
	Analyzer    AnalyzerClient
	Suggestions *SuggestionFetcher
	Voice       *VoiceController
	SearchLog   SearchLogger
	Vectors     VectorSearcher
	Logger      *slog.Logger

	// DefaultWeights seeds the session's weight tuple. Zero value falls
	// back to the balanced preset.
	DefaultWeights model.SimilarityWeights
}

// NewSearchSession creates a session with default weights and no filters.
func NewSearchSession(deps SearchSessionDeps) *SearchSession {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	weights := deps.DefaultWeights
	if weights.Sum() == 0 {
		weights, _ = QuickPreset(PresetBalanced)
	}
	return &SearchSession{
		cache:       deps.Cache,
		ranker:      deps.Ranker,
		analyzer:    deps.Analyzer,
		suggestions: deps.Suggestions,
		voice:       deps.Voice,
		searchLog:   deps.SearchLog,
		vectors:     deps.Vectors,
		logger:      logger,
		filters:     model.FilterState{Page: 1},
		paginator:   NewPaginator(1, 0),
		weights:     weights,
		thresholds:  model.Thresholds{},
	}
}

// Reset clears session state and the query cache.
func (s *SearchSession) Reset() {
	s.gen.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = model.FilterState{Page: 1}
	s.rawPage = nil
	s.paginator = NewPaginator(1, 0)
	s.imageMode = false
	s.analysis = nil
	s.thresholds = model.Thresholds{}
	s.cache.Clear()
}

// Filters returns the active filter state.
func (s *SearchSession) Filters() model.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// Voice returns the session's voice controller.
func (s *SearchSession) Voice() *VoiceController { return s.voice }

// ClearCache drops every cached page.
func (s *SearchSession) ClearCache() { s.cache.Clear() }

// CacheStats returns cumulative cache hit and miss counts.
func (s *SearchSession) CacheStats() (hits, misses int64) { return s.cache.Stats() }

// SetFilters replaces the filter state and resolves the new page. Leaving
// image mode is implicit: a plain filter search clears any prior analysis.
func (s *SearchSession) SetFilters(ctx context.Context, filters model.FilterState) (*model.SearchResponse, error) {
	gen := s.gen.Add(1)

	filters = filters.Normalized()
	page, hit, took, err := s.cache.Resolve(ctx, filters)
	if err != nil {
		// Prior results stay visible; only the error is surfaced.
		return nil, err
	}
	if s.gen.Load() != gen {
		return nil, model.ErrSuperseded
	}

	s.mu.Lock()
	s.filters = filters
	s.rawPage = page
	s.paginator = NewPaginator(page.Page, page.TotalPages)
	s.imageMode = false
	s.analysis = nil
	s.mu.Unlock()

	s.logSearch(filters, page, took)

	return &model.SearchResponse{SearchPage: page, CacheHit: hit, Took: took}, nil
}

// GoToPage clamps n into the valid range and resolves that page through
// the cache. The page number is part of the cache key, so each page is
// its own entry. The paginator only moves once the fetch succeeds, so a
// failed fetch leaves the position where it was.
func (s *SearchSession) GoToPage(ctx context.Context, n int) (*model.SearchResponse, error) {
	s.mu.Lock()
	filters := s.filters.WithPage(s.paginator.Target(n))
	s.mu.Unlock()

	return s.resolvePage(ctx, filters)
}

// NextPage advances one page. Returns (nil, nil) without fetching when
// already on the last page. A failed fetch does not advance the position.
func (s *SearchSession) NextPage(ctx context.Context) (*model.SearchResponse, error) {
	s.mu.Lock()
	if !s.paginator.HasNextPage() {
		s.mu.Unlock()
		return nil, nil
	}
	filters := s.filters.WithPage(s.paginator.Page() + 1)
	s.mu.Unlock()

	return s.resolvePage(ctx, filters)
}

// PrevPage moves back one page. Returns (nil, nil) without fetching when
// already on the first page. A failed fetch does not move the position.
func (s *SearchSession) PrevPage(ctx context.Context) (*model.SearchResponse, error) {
	s.mu.Lock()
	if !s.paginator.HasPrevPage() {
		s.mu.Unlock()
		return nil, nil
	}
	filters := s.filters.WithPage(s.paginator.Page() - 1)
	s.mu.Unlock()

	return s.resolvePage(ctx, filters)
}

func (s *SearchSession) resolvePage(ctx context.Context, filters model.FilterState) (*model.SearchResponse, error) {
	gen := s.gen.Add(1)

	page, hit, took, err := s.cache.Resolve(ctx, filters)
	if err != nil {
		return nil, err
	}
	if s.gen.Load() != gen {
		return nil, model.ErrSuperseded
	}

	s.mu.Lock()
	s.filters = filters
	s.rawPage = page
	s.paginator = NewPaginator(page.Page, page.TotalPages)
	s.mu.Unlock()

	s.logSearch(filters, page, took)

	return &model.SearchResponse{SearchPage: page, CacheHit: hit, Took: took}, nil
}

// Suggest returns debounced completion strings for partial search text.
func (s *SearchSession) Suggest(ctx context.Context, partialText string) ([]string, error) {
	return s.suggestions.Fetch(ctx, partialText)
}

// ApplyVoice feeds a transcript through the confidence gate and, when the
// outcome applies, runs the resulting search: parsed filters are merged
// into the active state, a free-text fallback replaces the search text.
func (s *SearchSession) ApplyVoice(ctx context.Context, cmd model.VoiceCommand) (VoiceOutcome, *model.SearchResponse, error) {
	outcome := s.voice.OnTranscript(cmd)
	return s.runVoiceOutcome(ctx, outcome)
}

// AcceptPendingVoice applies the held low-confidence transcript, if any.
func (s *SearchSession) AcceptPendingVoice(ctx context.Context) (VoiceOutcome, *model.SearchResponse, error) {
	outcome, ok := s.voice.AcceptPending()
	if !ok {
		return VoiceOutcome{}, nil, nil
	}
	return s.runVoiceOutcome(ctx, outcome)
}

func (s *SearchSession) runVoiceOutcome(ctx context.Context, outcome VoiceOutcome) (VoiceOutcome, *model.SearchResponse, error) {
	if !outcome.Applied {
		return outcome, nil, nil
	}

	s.mu.Lock()
	filters := s.filters
	s.mu.Unlock()

	if outcome.FreeText != "" {
		filters.SearchText = outcome.FreeText
	} else {
		filters = filters.Merge(outcome.Filters)
	}
	filters.Page = 1

	resp, err := s.SetFilters(ctx, filters)
	return outcome, resp, err
}

// ImageSearch analyzes a reference image against the current page's
// candidates and applies similarity ordering and threshold filtering.
// Weights are fixed at analysis time: mutating them later rescores
// nothing until the next upload. A second upload before the first
// analysis returns supersedes it; the stale response is discarded.
func (s *SearchSession) ImageSearch(ctx context.Context, imageURL string, weights model.SimilarityWeights) (*model.SearchPage, error) {
	gen := s.gen.Add(1)

	s.mu.Lock()
	filters := s.filters
	s.mu.Unlock()

	rawPage, _, _, err := s.cache.Resolve(ctx, filters)
	if err != nil {
		return nil, err
	}

	candidates := make([]AnalyzerCandidate, 0, len(rawPage.Results))
	for i := range rawPage.Results {
		if url := rawPage.Results[i].ImageURL(); url != "" {
			candidates = append(candidates, AnalyzerCandidate{ID: rawPage.Results[i].ID, ImageURL: url})
		}
	}

	analysis, err := s.analyzer.Analyze(ctx, imageURL, candidates, weights)
	if err != nil {
		return nil, err
	}
	if s.gen.Load() != gen {
		return nil, model.ErrSuperseded
	}

	s.mu.Lock()
	s.rawPage = rawPage
	s.imageMode = true
	s.analysis = analysis
	s.weights = weights
	s.paginator = NewPaginator(rawPage.Page, rawPage.TotalPages)
	ranked := s.rankedPageLocked()
	s.mu.Unlock()

	return ranked, nil
}

// SetThresholds replaces the per-feature threshold filters and re-derives
// the displayed page from the scores already in memory. No network call
// is made and the total count never changes.
func (s *SearchSession) SetThresholds(thresholds model.Thresholds) *model.SearchPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if thresholds == nil {
		thresholds = model.Thresholds{}
	}
	s.thresholds = thresholds
	if !s.imageMode {
		return s.rawPage
	}
	return s.rankedPageLocked()
}

// RankByFeature reorders the displayed page by one feature's breakdown
// points, keeping the threshold filter applied. Returns nil outside
// image mode.
func (s *SearchSession) RankByFeature(feature model.Feature) *model.SearchPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.imageMode || s.analysis == nil || s.rawPage == nil {
		return nil
	}

	breakdowns := s.breakdownsLocked()
	filtered := s.ranker.FilterByThresholds(s.rawPage.Results, breakdowns, s.thresholds, s.weights)
	ordered := s.ranker.RankByFeature(filtered, breakdowns, feature)
	return s.pageWithResultsLocked(ordered)
}

// ScoredResults returns the displayed results with each property's
// similarity score attached, in the current ranked-and-filtered order.
// Returns nil outside image mode.
func (s *SearchSession) ScoredResults() []model.RankedProperty {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.imageMode || s.analysis == nil || s.rawPage == nil {
		return nil
	}

	page := s.rankedPageLocked()
	out := make([]model.RankedProperty, 0, len(page.Results))
	for _, p := range page.Results {
		ranked := model.RankedProperty{Property: p}
		if score, ok := s.analysis.Scores[p.ID]; ok {
			scoreCopy := score
			ranked.Score = &scoreCopy
		}
		out = append(out, ranked)
	}
	return out
}

// Analysis returns the current image-search analysis, nil outside image
// mode.
func (s *SearchSession) Analysis() *AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analysis
}

// CandidatePool returns up to limit properties nearest to the reference
// embedding from the last analysis, for widening an image search beyond
// the current page. Returns nil when no embedding is available.
func (s *SearchSession) CandidatePool(ctx context.Context, limit int) ([]model.Property, error) {
	s.mu.Lock()
	analysis := s.analysis
	s.mu.Unlock()

	if s.vectors == nil || analysis == nil || len(analysis.ReferenceEmbedding) == 0 {
		return nil, nil
	}
	return s.vectors.NearestByFeatures(ctx, analysis.ReferenceEmbedding, limit)
}

// rankedPageLocked derives the displayed page from the raw page, the
// analysis scores and the active thresholds. Caller holds s.mu.
func (s *SearchSession) rankedPageLocked() *model.SearchPage {
	if s.rawPage == nil || s.analysis == nil {
		return s.rawPage
	}

	breakdowns := s.breakdownsLocked()
	filtered := s.ranker.FilterByThresholds(s.rawPage.Results, breakdowns, s.thresholds, s.weights)
	ranked := s.ranker.Rank(filtered, s.analysis.Scores)
	return s.pageWithResultsLocked(ranked)
}

func (s *SearchSession) breakdownsLocked() map[int64]model.Breakdown {
	breakdowns := make(map[int64]model.Breakdown, len(s.analysis.Scores))
	for id, score := range s.analysis.Scores {
		breakdowns[id] = score.Breakdown
	}
	return breakdowns
}

func (s *SearchSession) pageWithResultsLocked(results []model.Property) *model.SearchPage {
	page := *s.rawPage
	page.Results = results
	return &page
}

func (s *SearchSession) logSearch(filters model.FilterState, page *model.SearchPage, tookMs int64) {
	if s.searchLog == nil {
		return
	}
	searchID := uuid.NewString()
	ids := make([]int64, len(page.Results))
	for i := range page.Results {
		ids[i] = page.Results[i].ID
	}
	// Non-blocking: logging must never delay the search path.
	go func() {
		if err := s.searchLog.LogSearch(context.Background(), searchID, filters.CacheKey(), page.TotalCount, ids, tookMs); err != nil {
			s.logger.Warn("search log failed", "error", err)
		}
	}()
}
