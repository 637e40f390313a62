package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"core/internal/model"

	"golang.org/x/sync/singleflight"
)

// PropertyAPI is the remote query boundary. Implementations must honor
// server-side filtering, sorting and pagination per the filter state.
type PropertyAPI interface {
	Query(ctx context.Context, filters model.FilterState) (*model.SearchPage, error)
	Suggest(ctx context.Context, partialText string, limit int) ([]string, error)
}

// cacheEntry holds one fetched page keyed by the canonical filter key.
type cacheEntry struct {
	page           *model.SearchPage
	fetchedAt      time.Time
	responseTimeMs int64
}

// QueryCache maps canonicalized filter states to previously fetched result
// pages. Entries are served without a re-fetch while younger than the
// staleness window; a failed fetch never overwrites an existing entry.
type QueryCache struct {
	api       PropertyAPI
	staleTime time.Duration
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	entries map[string]*cacheEntry
	group   singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// NewQueryCache creates a cache over the given remote API.
func NewQueryCache(api PropertyAPI, staleTime time.Duration, logger *slog.Logger) *QueryCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryCache{
		api:       api,
		staleTime: staleTime,
		logger:    logger,
		now:       time.Now,
		entries:   make(map[string]*cacheEntry),
	}
}

// Resolve returns the page for the given filters, serving from memory when
// a live entry exists. The returned flags are (page, cacheHit,
// responseTimeMs, error). Concurrent resolves for the same key share a
// single remote fetch.
func (c *QueryCache) Resolve(ctx context.Context, filters model.FilterState) (*model.SearchPage, bool, int64, error) {
	key := filters.CacheKey()

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && c.now().Sub(entry.fetchedAt) < c.staleTime {
		c.mu.Unlock()
		c.hits.Add(1)
		c.logger.Debug("cache hit", "key", key)
		return entry.page, true, 0, nil
	}
	c.mu.Unlock()

	c.misses.Add(1)

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: a concurrent caller may have stored
		// a fresh entry between the miss and this fetch.
		c.mu.Lock()
		if entry, ok := c.entries[key]; ok && c.now().Sub(entry.fetchedAt) < c.staleTime {
			c.mu.Unlock()
			return entry, nil
		}
		c.mu.Unlock()

		start := c.now()
		page, err := c.api.Query(ctx, filters.Normalized())
		if err != nil {
			// The previous entry (if any) stays valid until its own
			// staleness expires.
			return nil, err
		}
		took := c.now().Sub(start).Milliseconds()

		entry := &cacheEntry{
			page:           page,
			fetchedAt:      c.now(),
			responseTimeMs: took,
		}
		c.mu.Lock()
		c.entries[key] = entry
		c.mu.Unlock()

		c.logger.Debug("cache fill", "key", key, "took_ms", took, "results", len(page.Results))
		return entry, nil
	})
	if err != nil {
		return nil, false, 0, &model.FetchError{Op: "query", Err: err}
	}

	entry := v.(*cacheEntry)
	return entry.page, false, entry.responseTimeMs, nil
}

// Clear drops all entries unconditionally. The next resolve for any key
// is a miss.
func (c *QueryCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()
	c.logger.Debug("cache cleared")
}

// Stats returns cumulative hit and miss counts.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
