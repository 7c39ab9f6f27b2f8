package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/caraseli02/inventory-app-sub002/internal/catalog"
	apperrors "github.com/caraseli02/inventory-app-sub002/internal/errors"
)

// InMemoryStore keeps products and movements in process memory. Used by the
// default record store configuration and by tests.
type InMemoryStore struct {
	mu        sync.RWMutex
	products  map[string]catalog.Product
	movements map[string][]catalog.StockMovement
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		products:  make(map[string]catalog.Product),
		movements: make(map[string][]catalog.StockMovement),
	}
}

// FindAll returns every product, ordered by name for a stable listing.
func (s *InMemoryStore) FindAll(_ context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// FindByBarcode retrieves the single product carrying the barcode. Barcodes
// are unique across the active set, so the first match is the only match.
func (s *InMemoryStore) FindByBarcode(_ context.Context, barcode string) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.Barcode != "" && p.Barcode == barcode {
			found := p
			return &found, nil
		}
	}
	return nil, apperrors.ErrProductNotFound
}

// Movements returns a product's history, most recent first.
func (s *InMemoryStore) Movements(_ context.Context, productID string) ([]catalog.StockMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.products[productID]; !ok {
		return nil, apperrors.ErrProductNotFound
	}
	history := s.movements[productID]
	out := make([]catalog.StockMovement, len(history))
	copy(out, history)
	return out, nil
}

// AddMovement applies the signed quantity to the product's stock and
// prepends the movement to its history.
func (s *InMemoryStore) AddMovement(_ context.Context, productID string, quantity int, direction catalog.Direction) (*catalog.StockMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return nil, apperrors.ErrProductNotFound
	}

	signed := catalog.SignedQuantity(quantity, direction)
	if p.Stock+signed < 0 {
		return nil, apperrors.ErrInsufficientStock
	}

	m := catalog.StockMovement{
		ID:        uuid.NewString(),
		ProductID: productID,
		Direction: direction,
		Quantity:  signed,
		CreatedAt: time.Now(),
	}
	p.Stock += signed
	s.products[productID] = p
	s.movements[productID] = append([]catalog.StockMovement{m}, s.movements[productID]...)
	return &m, nil
}

// Create adds a new product, assigning an ID when absent.
func (s *InMemoryStore) Create(_ context.Context, p catalog.Product) (*catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.products[p.ID] = p
	return &p, nil
}

// Seed loads a small demo catalog for local development.
func (s *InMemoryStore) Seed() {
	demo := []catalog.Product{
		{ID: uuid.NewString(), Name: "Espresso Beans 1kg", Barcode: "4006381333931", Category: "Coffee", Price: decimal.NewFromFloat(18.50), Stock: 24, MinStock: 10},
		{ID: uuid.NewString(), Name: "Oat Milk 1L", Barcode: "7350002401224", Category: "Dairy", Price: decimal.NewFromFloat(2.95), Stock: 6, MinStock: 12},
		{ID: uuid.NewString(), Name: "Paper Cups 8oz (50)", Barcode: "5000112637922", Category: "Supplies", Price: decimal.NewFromFloat(4.20), Stock: 40},
		{ID: uuid.NewString(), Name: "Ceramic Mug", Category: "Merch", Price: decimal.NewFromFloat(9.99), Stock: 3, MinStock: 5},
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range demo {
		s.products[p.ID] = p
	}
}
