// Package cache implements the client-side entity cache: a keyed store of
// remotely-sourced values with staleness tracking, in-flight fetch
// deduplication and snapshot/restore support for optimistic mutations.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// State of a cache entry.
type State int

const (
	StateAbsent State = iota
	StateFetching
	StateFresh
	StateStale
	StateError
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateFetching:
		return "fetching"
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is a point-in-time view of one cache slot. Value may be non-nil even
// in the stale and error states: the last-known-good value stays visible
// until a refetch replaces it.
type Entry struct {
	State     State
	Value     any
	Err       error
	FetchedAt time.Time
}

// Loader produces the authoritative value for a key. Loaders must be
// idempotent reads; a superseded load is simply discarded.
type Loader func(ctx context.Context) (any, error)

// Cloner is implemented by values that can deep-copy themselves for
// snapshots. Values that do not implement it are snapshotted as-is, which is
// only safe for immutable values.
type Cloner interface {
	CloneValue() any
}

type entry struct {
	state     State
	value     any
	err       error
	fetchedAt time.Time
}

// Cache owns every entry exclusively. Consumers interact only through its
// methods and must not retain returned values across suspension points
// without re-reading.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	group   singleflight.Group
	ttl     time.Duration
	logger  *slog.Logger
}

// New creates a cache whose entries stay fresh for ttl after a successful
// fetch.
func New(ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		ttl:     ttl,
		logger:  logger.With("component", "cache"),
	}
}

// Read returns the current entry for key without blocking. Absent keys yield
// an absent entry; the caller decides whether to trigger a fetch. An entry
// past its freshness horizon is demoted to stale on the way out.
func (c *Cache) Read(key string) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return Entry{State: StateAbsent}
	}
	if e.state == StateFresh && time.Since(e.fetchedAt) > c.ttl {
		e.state = StateStale
	}
	return Entry{State: e.state, Value: e.value, Err: e.err, FetchedAt: e.fetchedAt}
}

// Fetch loads the value for key. Concurrent fetches for the same key share a
// single loader invocation. On success the entry becomes fresh; on failure
// it records the error and keeps any previous value. Fetch never retries on
// its own.
func (c *Cache) Fetch(ctx context.Context, key string, loader Loader) (any, error) {
	c.mu.Lock()
	e := c.ensureLocked(key)
	prev := e.state
	e.state = StateFetching
	c.mu.Unlock()

	value, err, shared := c.group.Do(key, func() (any, error) {
		return loader(ctx)
	})
	if shared {
		c.logger.Debug("fetch deduplicated", "key", key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	e = c.ensureLocked(key)
	if err != nil {
		e.state = StateError
		e.err = err
		c.logger.Warn("fetch failed", "key", key, "previous_state", prev.String(), "error", err)
		return nil, err
	}
	e.state = StateFresh
	e.value = value
	e.err = nil
	e.fetchedAt = time.Now()
	return value, nil
}

// Write replaces the entry's value and marks it fresh. Used both for
// confirmed remote results and for speculative optimistic writes.
func (c *Cache) Write(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.ensureLocked(key)
	e.state = StateFresh
	e.value = value
	e.err = nil
	e.fetchedAt = time.Now()
}

// Invalidate marks the entry stale. The value is kept so stale data stays
// visible until the next refetch resolves.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return
	}
	e.state = StateStale
}

// Snapshot returns a deep copy of the entry's current value, or false when
// the key holds no value.
func (c *Cache) Snapshot(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || e.value == nil {
		return nil, false
	}
	if cl, ok := e.value.(Cloner); ok {
		return cl.CloneValue(), true
	}
	return e.value, true
}

// Restore puts a previously captured snapshot back, replacing whatever is
// currently stored. A revalidation racing a restore resolves last-write-wins;
// the next invalidation corrects either outcome.
func (c *Cache) Restore(key string, value any) {
	c.Write(key, value)
}

// Remove drops the entry entirely. Used to roll back a speculative write
// into a previously absent key.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *Cache) ensureLocked(key string) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{state: StateAbsent}
		c.entries[key] = e
	}
	return e
}

// Value type-asserts an entry's value.
func Value[T any](e Entry) (T, bool) {
	v, ok := e.Value.(T)
	return v, ok
}
