// Package history caches resolved results of past query executions for the
// lifetime of one authenticated session. A Cache is constructed at session
// start and discarded on logout; there is no package-level state.
package history

import (
	"context"
	"errors"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"

	"veritas-console/internal/client"
	"veritas-console/internal/normalize"
	"veritas-console/internal/record"
)

// ErrNotFound reports that the service has no stored result for the entry.
// It is a valid outcome, presented as "no previous result", never as an
// error message.
var ErrNotFound = errors.New("history: no stored result")

// ErrAuthExpired mirrors the transport's auth failure so callers of this
// package do not have to import the client to classify it.
var ErrAuthExpired = client.ErrAuthExpired

// Resolver fetches the raw stored result payload for a prior query
// execution. Implemented by client.Client.
type Resolver interface {
	StoredResult(ctx context.Context, query, timestamp string) ([]byte, error)
}

// Cache resolves history entries to their stored case lists. Resolution is
// single-flight per (query, timestamp) key, successes are cached for the
// session, "no stored result" is negatively cached, and transport or auth
// failures are never cached so the next attempt retries.
type Cache struct {
	resolver Resolver
	logger   *log.Logger
	group    singleflight.Group

	mu      sync.Mutex
	results map[string][]record.CaseRecord
	misses  map[string]bool
}

// NewCache creates an empty session cache over the given resolver.
func NewCache(resolver Resolver, logger *log.Logger) *Cache {
	return &Cache{
		resolver: resolver,
		logger:   logger,
		results:  make(map[string][]record.CaseRecord),
		misses:   make(map[string]bool),
	}
}

// Resolve returns the stored case list for entry. Concurrent calls for the
// same key share one backend request. Returns ErrNotFound when the service
// has no stored result, ErrAuthExpired when the session token was rejected,
// or a transport error otherwise.
func (c *Cache) Resolve(ctx context.Context, entry record.HistoryEntry) ([]record.CaseRecord, error) {
	key := entry.Key()

	if cases, err, ok := c.cached(key); ok {
		return cases, err
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: a caller that raced past the fast path
		// after an earlier flight settled must not refetch.
		if cases, err, ok := c.cached(key); ok {
			return cases, err
		}
		return c.fetch(ctx, entry, key)
	})
	if err != nil {
		return nil, err
	}
	return v.([]record.CaseRecord), nil
}

// cached reports a settled outcome for key: the stored case list, or
// ErrNotFound when the miss was negatively cached.
func (c *Cache) cached(key string) ([]record.CaseRecord, error, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cases, ok := c.results[key]; ok {
		return cases, nil, true
	}
	if c.misses[key] {
		return nil, ErrNotFound, true
	}
	return nil, nil, false
}

// fetch performs the backend lookup and updates the session cache.
func (c *Cache) fetch(ctx context.Context, entry record.HistoryEntry, key string) (interface{}, error) {
	raw, err := c.resolver.StoredResult(ctx, entry.Query, entry.Timestamp)
	if errors.Is(err, client.ErrNoStoredResult) {
		c.mu.Lock()
		c.misses[key] = true
		c.mu.Unlock()
		return nil, ErrNotFound
	}
	if err != nil {
		// Not cached: auth expiry and transport failures must retry on the
		// next click.
		c.logger.Printf("history resolution failed for %q: %v", entry.Query, err)
		return nil, err
	}

	cases := normalize.Normalize(raw).Cases
	c.mu.Lock()
	c.results[key] = cases
	c.mu.Unlock()
	return cases, nil
}

// Len reports the number of positively cached results.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

// Reset drops all cached state. Called on logout.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = make(map[string][]record.CaseRecord)
	c.misses = make(map[string]bool)
}
