// Package store provides the record store's product storage.
package store

import (
	"context"

	"github.com/caraseli02/inventory-app-sub002/internal/catalog"
)

// ProductStore abstracts the record store's persistence, allowing in-memory
// and PostgreSQL implementations.
type ProductStore interface {
	// FindAll returns the full product set.
	FindAll(ctx context.Context) ([]catalog.Product, error)

	// FindByBarcode retrieves the single product carrying the barcode.
	// Returns ErrProductNotFound when no product matches.
	FindByBarcode(ctx context.Context, barcode string) (*catalog.Product, error)

	// Movements returns a product's stock movements, most recent first.
	// Returns ErrProductNotFound for unknown products.
	Movements(ctx context.Context, productID string) ([]catalog.StockMovement, error)

	// AddMovement records one IN/OUT adjustment, applies its signed quantity
	// to the product's stock and returns the persisted movement. Returns
	// ErrProductNotFound for unknown products and ErrInsufficientStock when
	// an OUT movement would drive the stock negative.
	AddMovement(ctx context.Context, productID string, quantity int, direction catalog.Direction) (*catalog.StockMovement, error)

	// Create adds a new product and returns it with its assigned ID.
	Create(ctx context.Context, p catalog.Product) (*catalog.Product, error)
}
