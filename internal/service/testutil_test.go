package service

import (
	"context"
	"fmt"
	"sync"

	"core/internal/model"
)

// fakePropertyAPI is an in-memory PropertyAPI with call counting and
// optional per-key blocking for ordering tests.
type fakePropertyAPI struct {
	mu           sync.Mutex
	queryCalls   int
	suggestCalls int
	err          error
	suggestions  []string
	pageSize     int
	properties   []model.Property
	gates        map[string]chan struct{}
}

func newFakePropertyAPI(properties []model.Property) *fakePropertyAPI {
	return &fakePropertyAPI{
		pageSize:   12,
		properties: properties,
		gates:      make(map[string]chan struct{}),
	}
}

// gate makes the next Query for this key block until the channel closes.
func (f *fakePropertyAPI) gate(key string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[key] = ch
	return ch
}

func (f *fakePropertyAPI) Query(ctx context.Context, filters model.FilterState) (*model.SearchPage, error) {
	key := filters.CacheKey()

	f.mu.Lock()
	f.queryCalls++
	gate := f.gates[key]
	err := f.err
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	total := len(f.properties)
	totalPages := (total + f.pageSize - 1) / f.pageSize
	page := filters.Page
	if page < 1 {
		page = 1
	}

	start := (page - 1) * f.pageSize
	end := start + f.pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &model.SearchPage{
		Results:    f.properties[start:end],
		TotalCount: total,
		Page:       page,
		PageSize:   f.pageSize,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}, nil
}

func (f *fakePropertyAPI) Suggest(ctx context.Context, partialText string, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggestCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.suggestions, nil
}

func (f *fakePropertyAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queryCalls
}

func (f *fakePropertyAPI) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// fakeAnalyzer returns canned analysis results.
type fakeAnalyzer struct {
	mu     sync.Mutex
	calls  int
	result *AnalysisResult
	err    error
	gate   chan struct{}
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, imageURL string, candidates []AnalyzerCandidate, weights model.SimilarityWeights) (*AnalysisResult, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeAnalyzer) IsEnabled() bool { return true }

// fakePreferenceStore is an in-memory PreferenceStore.
type fakePreferenceStore struct {
	mu      sync.Mutex
	presets []model.WeightPreset
	prefs   map[string]string
}

func newFakePreferenceStore() *fakePreferenceStore {
	return &fakePreferenceStore{prefs: make(map[string]string)}
}

func (f *fakePreferenceStore) ListWeightPresets(ctx context.Context) ([]model.WeightPreset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.WeightPreset, len(f.presets))
	copy(out, f.presets)
	return out, nil
}

func (f *fakePreferenceStore) InsertWeightPreset(ctx context.Context, preset model.WeightPreset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presets = append(f.presets, preset)
	return nil
}

func (f *fakePreferenceStore) DeleteWeightPreset(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.presets[:0]
	for _, p := range f.presets {
		if p.Name != name {
			out = append(out, p)
		}
	}
	f.presets = out
	return nil
}

func (f *fakePreferenceStore) GetPreference(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prefs[key], nil
}

func (f *fakePreferenceStore) SetPreference(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefs[key] = value
	return nil
}

// makeProperties builds n properties with ids 1..n.
func makeProperties(n int) []model.Property {
	thumb := func(i int) *string {
		s := fmt.Sprintf("https://img.example.com/p%d.jpg", i)
		return &s
	}
	out := make([]model.Property, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, model.Property{
			ID:           int64(i),
			Title:        "Listing",
			PropertyType: model.PropertyTypeApartment,
			ListingType:  model.ListingTypeSale,
			ThumbnailURL: thumb(i),
		})
	}
	return out
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
