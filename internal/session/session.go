// Package session wires the client core together and exposes the surface the
// presentation layer consumes: cached reads, stock mutations, filter state
// and the derived product projection.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/caraseli02/inventory-app-sub002/internal/cache"
	"github.com/caraseli02/inventory-app-sub002/internal/catalog"
	"github.com/caraseli02/inventory-app-sub002/internal/mutation"
	"github.com/caraseli02/inventory-app-sub002/internal/notify"
	"github.com/caraseli02/inventory-app-sub002/internal/projection"
)

// Store is the remote record store collaborator.
type Store interface {
	AllProducts(ctx context.Context) (catalog.ProductList, error)
	ProductByBarcode(ctx context.Context, barcode string) (*catalog.Product, error)
	StockMovements(ctx context.Context, productID string) (catalog.MovementList, error)
	AddStockMovement(ctx context.Context, productID string, quantity int, direction catalog.Direction) (*catalog.StockMovement, error)
}

// Options tune one session. Zero values fall back to the defaults.
type Options struct {
	CacheTTL         time.Duration // freshness horizon, default 30s
	RetryAttempts    int           // retries after the first failure, default 2
	ConfirmThreshold int           // large-quantity gate, default 50
	NotifyCapacity   int           // toast queue capacity, default 5
	NotifyTTL        time.Duration // per-toast expiry, default 3s
}

const (
	defaultCacheTTL      = 30 * time.Second
	defaultRetryAttempts = 2
)

// Session is one client's view of the record store. All remote data flows
// through its cache; all stock writes flow through its coordinator.
type Session struct {
	store       Store
	cache       *cache.Cache
	coordinator *mutation.Coordinator
	notifier    *notify.Queue
	retries     int
	logger      *slog.Logger

	mu     sync.Mutex
	filter projection.Config
}

// New creates a session against store.
func New(store Store, opts Options, logger *slog.Logger) *Session {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	retries := opts.RetryAttempts
	if retries <= 0 {
		retries = defaultRetryAttempts
	}

	c := cache.New(ttl, logger)
	q := notify.NewQueue(opts.NotifyCapacity, opts.NotifyTTL)
	return &Session{
		store:       store,
		cache:       c,
		coordinator: mutation.NewCoordinator(c, store, q, opts.ConfirmThreshold, logger),
		notifier:    q,
		retries:     retries,
		logger:      logger.With("component", "session"),
		filter:      projection.DefaultConfig(),
	}
}

// Products serves the full product set stale-while-revalidate: fresh cache
// hits return immediately, stale values are returned while a background
// refetch runs, and the first read blocks on the network.
func (s *Session) Products(ctx context.Context) (catalog.ProductList, error) {
	v, err := s.productsHandle().Get(ctx)
	if err != nil {
		return nil, err
	}
	list, ok := v.(catalog.ProductList)
	if !ok {
		return nil, fmt.Errorf("unexpected cache value for %s", catalog.KeyAllProducts)
	}
	return list, nil
}

// ProductsHandle exposes the reactive read handle for the product set.
func (s *Session) ProductsHandle() *cache.Handle {
	return s.productsHandle()
}

func (s *Session) productsHandle() *cache.Handle {
	return s.cache.Handle(catalog.KeyAllProducts, s.withRetry(func(ctx context.Context) (any, error) {
		list, err := s.store.AllProducts(ctx)
		if err != nil {
			return nil, err
		}
		return list, nil
	}))
}

// LookupBarcode resolves a scanned barcode through the cache. A nil product
// with nil error means the barcode is unknown to the record store.
func (s *Session) LookupBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	h := s.cache.Handle(catalog.KeyProduct(barcode), s.withRetry(func(ctx context.Context) (any, error) {
		p, err := s.store.ProductByBarcode(ctx, barcode)
		if err != nil {
			return nil, err
		}
		return p, nil
	}))
	v, err := h.Get(ctx)
	if err != nil {
		return nil, err
	}
	p, _ := v.(*catalog.Product)
	return p, nil
}

// Movements serves a product's movement history, most recent first. Pending
// (speculative) movements appear at the head while a mutation is in flight.
func (s *Session) Movements(ctx context.Context, productID string) (catalog.MovementList, error) {
	h := s.movementsHandle(productID)
	v, err := h.Get(ctx)
	if err != nil {
		return nil, err
	}
	list, _ := v.(catalog.MovementList)
	return list, nil
}

// MovementsHandle exposes the reactive read handle for one product's history.
func (s *Session) MovementsHandle(productID string) *cache.Handle {
	return s.movementsHandle(productID)
}

func (s *Session) movementsHandle(productID string) *cache.Handle {
	return s.cache.Handle(catalog.KeyHistory(productID), s.withRetry(func(ctx context.Context) (any, error) {
		list, err := s.store.StockMovements(ctx, productID)
		if err != nil {
			return nil, err
		}
		return list, nil
	}))
}

// AdjustStock submits one stock adjustment through the mutation coordinator.
func (s *Session) AdjustStock(ctx context.Context, req mutation.AdjustRequest) (bool, error) {
	return s.coordinator.AdjustStock(ctx, req)
}

// AdjustPending reports whether an adjustment for the product and direction
// is still in flight.
func (s *Session) AdjustPending(productID string, direction catalog.Direction) bool {
	return s.coordinator.Pending(productID, direction)
}

// SetFilter updates one filter/sort field by name. Unknown names and
// mistyped values are rejected.
func (s *Session) SetFilter(name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch name {
	case "search":
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("filter %q expects a string", name)
		}
		s.filter.Search = v
	case "category":
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("filter %q expects a string", name)
		}
		s.filter.Category = v
	case "lowStockOnly":
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("filter %q expects a bool", name)
		}
		s.filter.LowStockOnly = v
	case "sortField":
		v, ok := value.(projection.Field)
		if !ok {
			if str, sok := value.(string); sok {
				v = projection.Field(str)
				ok = true
			}
		}
		if !ok {
			return fmt.Errorf("filter %q expects a sort field", name)
		}
		switch v {
		case projection.FieldName, projection.FieldStock, projection.FieldPrice, projection.FieldCategory:
			s.filter.SortField = v
		default:
			return fmt.Errorf("unknown sort field %q", v)
		}
	case "sortDir":
		v, ok := value.(projection.Dir)
		if !ok {
			if str, sok := value.(string); sok {
				v = projection.Dir(str)
				ok = true
			}
		}
		if !ok || (v != projection.Asc && v != projection.Desc) {
			return fmt.Errorf("filter %q expects asc or desc", name)
		}
		s.filter.SortDir = v
	default:
		return fmt.Errorf("unknown filter %q", name)
	}
	return nil
}

// ResetFilters restores the default filter/sort configuration.
func (s *Session) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = projection.DefaultConfig()
}

// Filter returns the current filter/sort configuration.
func (s *Session) Filter() projection.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Visible derives the operator-visible product list from the cached set and
// the current filter configuration.
func (s *Session) Visible(ctx context.Context) (projection.Result, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return projection.Result{}, err
	}
	return projection.Apply(products, s.Filter()), nil
}

// Notifications returns the currently visible notifications.
func (s *Session) Notifications() []notify.Notification {
	return s.notifier.Active()
}

// Refresh invalidates the product set so the next read revalidates.
func (s *Session) Refresh() {
	s.cache.Invalidate(catalog.KeyAllProducts)
}

// Close releases session resources.
func (s *Session) Close() {
	s.notifier.Close()
}

// withRetry wraps a loader with the bounded retry policy: retry s.retries
// times after the first failure, surface the final error.
func (s *Session) withRetry(loader cache.Loader) cache.Loader {
	return func(ctx context.Context) (any, error) {
		var lastErr error
		for attempt := 0; attempt <= s.retries; attempt++ {
			v, err := loader(ctx)
			if err == nil {
				return v, nil
			}
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			s.logger.Debug("fetch attempt failed", "attempt", attempt+1, "error", err)
		}
		return nil, lastErr
	}
}
