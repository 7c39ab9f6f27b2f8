package cache

import "context"

// Handle is the reactive read surface for one cache key: current value,
// loading flag, error and a manual refetch trigger.
type Handle struct {
	cache  *Cache
	key    string
	loader Loader
}

// Handle builds a read handle for key backed by loader.
func (c *Cache) Handle(key string, loader Loader) *Handle {
	return &Handle{cache: c, key: key, loader: loader}
}

// Entry returns the current entry without triggering any load.
func (h *Handle) Entry() Entry {
	return h.cache.Read(h.key)
}

// Loading reports whether a fetch for the key is in flight.
func (h *Handle) Loading() bool {
	return h.cache.Read(h.key).State == StateFetching
}

// Err returns the entry's recorded error, if any.
func (h *Handle) Err() error {
	return h.cache.Read(h.key).Err
}

// Get serves the key stale-while-revalidate: a fresh value returns
// immediately, a stale or errored value returns immediately while a
// background refetch runs, and an absent value blocks on the first load.
func (h *Handle) Get(ctx context.Context) (any, error) {
	e := h.cache.Read(h.key)
	switch e.State {
	case StateFresh, StateFetching:
		if e.Value != nil {
			return e.Value, nil
		}
		return h.cache.Fetch(ctx, h.key, h.loader)
	case StateStale, StateError:
		if e.Value != nil {
			// Revalidate without blocking the caller. The background load
			// must survive the caller's cancellation.
			bgCtx := context.WithoutCancel(ctx)
			go func() {
				_, _ = h.cache.Fetch(bgCtx, h.key, h.loader)
			}()
			return e.Value, nil
		}
		return h.cache.Fetch(ctx, h.key, h.loader)
	default:
		return h.cache.Fetch(ctx, h.key, h.loader)
	}
}

// Refetch forces a blocking reload regardless of freshness.
func (h *Handle) Refetch(ctx context.Context) (any, error) {
	return h.cache.Fetch(ctx, h.key, h.loader)
}
