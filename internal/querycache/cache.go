// Package querycache is the process-wide read cache between the HTTP surface
// and the data gateway. Entries are keyed by entity plus canonical filter
// serialization and carry a fetch timestamp; against a per-read staleness
// window an entry is Missing, Fresh, or Stale. Stale values are still served
// synchronously while a background refetch runs, concurrent fetches for one
// key collapse to a single call, and mutations synchronize the cache through
// two distinct operations: in-place patches (value only) and invalidation
// (forces a future fetch).
package querycache

import (
	"context"
	"strings"
	"sync"
	"time"

	"sellerhood/internal/observability"

	"golang.org/x/sync/singleflight"
)

// State describes a cache entry relative to a staleness window.
type State int

const (
	Missing State = iota
	Fresh
	Stale
)

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache is a process-wide in-memory query cache. The zero value is not
// usable; construct with New.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	group   singleflight.Group

	// now is replaceable in tests.
	now func() time.Time
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// SetClock replaces the cache's time source. Intended for tests.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// lookup returns the stored value and its state against staleAfter.
// staleAfter <= 0 means a present entry is always Stale: it is still served
// synchronously but every read refreshes it in the background.
func (c *Cache) lookup(key string, staleAfter time.Duration) (any, State) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, Missing
	}
	if staleAfter > 0 && c.now().Sub(e.fetchedAt) < staleAfter {
		return e.value, Fresh
	}
	return e.value, Stale
}

// Put stores value under key with a fresh timestamp.
func (c *Cache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &entry{value: value, fetchedAt: c.now()}
}

// Patch applies fn to the stored value in place, leaving the fetch timestamp
// untouched. A missing entry is left missing: patches never create entries,
// so an invalidated key still forces a fetch on next read. fn must return
// the replacement value and should copy-on-write anything it changes, since
// earlier readers may still hold the previous value.
func (c *Cache) Patch(key string, fn func(value any) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return
	}
	e.value = fn(e.value)
}

// PatchPrefix applies fn to every entry whose key starts with prefix, under
// the same rules as Patch.
func (c *Cache) PatchPrefix(prefix string, fn func(key string, value any) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if strings.HasPrefix(k, prefix) {
			e.value = fn(k, e.value)
		}
	}
}

// Invalidate removes the entry for key, transitioning it to Missing.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		observability.CacheInvalidations.WithLabelValues(entityOf(key)).Inc()
	}
}

// InvalidatePrefix removes every entry whose key starts with prefix.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			observability.CacheInvalidations.WithLabelValues(entityOf(k)).Inc()
		}
	}
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Fetch reads key through the cache. A Fresh value returns immediately. A
// Stale value also returns immediately while fn refreshes the entry in the
// background. On a Missing entry fn runs inline; concurrent callers for the
// same key share a single fn invocation. A failed fetch stores nothing, so
// the next read retries.
func Fetch[T any](ctx context.Context, c *Cache, key string, staleAfter time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	entity := entityOf(key)
	v, state := c.lookup(key, staleAfter)
	switch state {
	case Fresh:
		observability.CacheReads.WithLabelValues(entity, "hit").Inc()
		return v.(T), nil
	case Stale:
		observability.CacheReads.WithLabelValues(entity, "stale").Inc()
		c.refreshAsync(ctx, key, entity, func(ctx context.Context) (any, error) {
			return fn(ctx)
		})
		return v.(T), nil
	}

	observability.CacheReads.WithLabelValues(entity, "miss").Inc()
	res, err, _ := c.group.Do(key, func() (any, error) {
		val, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.Put(key, val)
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

// refreshAsync refetches key in the background, detached from the caller's
// cancellation. Failures leave the stale value in place.
func (c *Cache) refreshAsync(ctx context.Context, key, entity string, fn func(ctx context.Context) (any, error)) {
	bg := context.WithoutCancel(ctx)
	go func() {
		_, err, shared := c.group.Do(key, func() (any, error) {
			val, err := fn(bg)
			if err != nil {
				return nil, err
			}
			c.Put(key, val)
			return val, nil
		})
		if err == nil && !shared {
			observability.CacheBackgroundRefreshes.WithLabelValues(entity).Inc()
		}
	}()
}

// entityOf extracts the entity segment of a cache key (everything before the
// first ':').
func entityOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
