package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"core/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(api PropertyAPI) (*QueryCache, *time.Time) {
	cache := NewQueryCache(api, 30*time.Second, nil)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &now
	cache.now = func() time.Time { return *clock }
	return cache, clock
}

func TestQueryCache_HitAndMiss(t *testing.T) {
	api := newFakePropertyAPI(makeProperties(3))
	cache, _ := newTestCache(api)

	filters := model.FilterState{SearchText: "garden view", Page: 1}

	page, hit, _, err := cache.Resolve(context.Background(), filters)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, page.Results, 3)
	assert.Equal(t, 1, api.calls())

	// Same canonical key: served from memory, no remote call
	page2, hit2, took2, err := cache.Resolve(context.Background(), filters)
	require.NoError(t, err)
	assert.True(t, hit2)
	assert.Equal(t, int64(0), took2)
	assert.Equal(t, page, page2)
	assert.Equal(t, 1, api.calls())

	hits, misses := cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestQueryCache_KeyDeterminism(t *testing.T) {
	api := newFakePropertyAPI(makeProperties(1))
	cache, _ := newTestCache(api)

	a := model.FilterState{Amenities: []string{"Pool", "Gym", "Pool"}, Page: 1}
	b := model.FilterState{Amenities: []string{"Gym", "Pool"}} // page defaults to 1

	_, hit, _, err := cache.Resolve(context.Background(), a)
	require.NoError(t, err)
	assert.False(t, hit)

	// Deep-equal after canonicalization: same entry
	_, hit, _, err = cache.Resolve(context.Background(), b)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, api.calls())

	// Any field difference is a different entry
	c := b
	c.MinBedrooms = intPtr(2)
	_, hit, _, err = cache.Resolve(context.Background(), c)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, api.calls())

	// Page is part of the key
	_, hit, _, err = cache.Resolve(context.Background(), b.WithPage(2))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, api.calls())
}

func TestQueryCache_Staleness(t *testing.T) {
	api := newFakePropertyAPI(makeProperties(1))
	cache, clock := newTestCache(api)

	filters := model.FilterState{Page: 1}

	_, _, _, err := cache.Resolve(context.Background(), filters)
	require.NoError(t, err)

	*clock = clock.Add(29 * time.Second)
	_, hit, _, err := cache.Resolve(context.Background(), filters)
	require.NoError(t, err)
	assert.True(t, hit, "29s after fetch must be a hit")

	*clock = clock.Add(2 * time.Second) // 31s after fetch
	_, hit, _, err = cache.Resolve(context.Background(), filters)
	require.NoError(t, err)
	assert.False(t, hit, "31s after fetch must be a miss")
	assert.Equal(t, 2, api.calls())
}

func TestQueryCache_Deduplication(t *testing.T) {
	api := newFakePropertyAPI(makeProperties(1))
	cache, _ := newTestCache(api)

	filters := model.FilterState{SearchText: "slow", Page: 1}
	gate := api.gate(filters.CacheKey())

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, _, err := cache.Resolve(context.Background(), filters)
			results[i] = err
		}(i)
	}

	// Let both resolves reach the in-flight fetch, then release it
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	for _, err := range results {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, api.calls(), "concurrent resolves for one key must share a single fetch")
}

func TestQueryCache_FailureDoesNotPoison(t *testing.T) {
	api := newFakePropertyAPI(makeProperties(2))
	cache, clock := newTestCache(api)

	filters := model.FilterState{Page: 1}

	page, _, _, err := cache.Resolve(context.Background(), filters)
	require.NoError(t, err)

	// While the entry is fresh a backend failure is never observed
	api.setErr(errors.New("connection refused"))
	got, hit, _, err := cache.Resolve(context.Background(), filters)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, page, got)

	// Once stale, the failure surfaces as a FetchError and nothing is stored
	*clock = clock.Add(31 * time.Second)
	_, _, _, err = cache.Resolve(context.Background(), filters)
	require.Error(t, err)
	var fetchErr *model.FetchError
	require.ErrorAs(t, err, &fetchErr)

	// Recovery: the next resolve after the backend heals is a plain miss
	api.setErr(nil)
	_, hit, _, err = cache.Resolve(context.Background(), filters)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestQueryCache_Clear(t *testing.T) {
	api := newFakePropertyAPI(makeProperties(1))
	cache, _ := newTestCache(api)

	filters := model.FilterState{Page: 1}
	_, _, _, err := cache.Resolve(context.Background(), filters)
	require.NoError(t, err)

	cache.Clear()

	_, hit, _, err := cache.Resolve(context.Background(), filters)
	require.NoError(t, err)
	assert.False(t, hit, "resolve after Clear must be a miss")
	assert.Equal(t, 2, api.calls())
}
