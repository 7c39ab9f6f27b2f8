// Package catalog defines the domain types shared by the client core and the
// record store: products, stock movements and the cache key scheme.
package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction of a stock movement.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// Product is a catalog entry. Stock and MinStock default to zero when the
// record store never configured them.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Barcode  string          `json:"barcode,omitempty"`
	Category string          `json:"category,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	MinStock int             `json:"min_stock"`
	ImageURL string          `json:"image_url,omitempty"`
}

// LowStock reports whether the product is below its configured minimum.
// A product with no minimum configured is never low stock, even at zero
// units.
func (p Product) LowStock() bool {
	return p.MinStock > 0 && p.Stock < p.MinStock
}

// StockMovement is one IN/OUT adjustment. Quantity is signed: positive for
// IN, negative for OUT.
type StockMovement struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Direction Direction `json:"direction"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// pendingIDPrefix marks movements written speculatively by the client. They
// are displayed but never persisted; a refetch discards them.
const pendingIDPrefix = "pending-"

// Pending reports whether the movement is a speculative client-side record
// awaiting remote confirmation.
func (m StockMovement) Pending() bool {
	return strings.HasPrefix(m.ID, pendingIDPrefix)
}

// NewPendingMovement builds the synthetic movement prepended to the cached
// history while a mutation is in flight.
func NewPendingMovement(productID string, quantity int, direction Direction) StockMovement {
	return StockMovement{
		ID:        pendingIDPrefix + uuid.NewString(),
		ProductID: productID,
		Direction: direction,
		Quantity:  SignedQuantity(quantity, direction),
		CreatedAt: time.Now(),
	}
}

// SignedQuantity converts a positive magnitude into the signed quantity
// stored on a movement.
func SignedQuantity(quantity int, direction Direction) int {
	if direction == DirectionOut {
		return -quantity
	}
	return quantity
}

// ProductList is the cached product set. It deep-copies for cache snapshots.
type ProductList []Product

// CloneValue returns a deep copy of the list.
func (l ProductList) CloneValue() any {
	out := make(ProductList, len(l))
	copy(out, l)
	return out
}

// MovementList is a cached movement history, most recent first.
type MovementList []StockMovement

// CloneValue returns a deep copy of the list.
func (l MovementList) CloneValue() any {
	out := make(MovementList, len(l))
	copy(out, l)
	return out
}

// Cache key scheme: one composite key per addressable entity.
const KeyAllProducts = "product:all"

// KeyProduct addresses a single-product barcode lookup.
func KeyProduct(barcode string) string {
	return fmt.Sprintf("product:%s", barcode)
}

// KeyHistory addresses a product's movement history.
func KeyHistory(productID string) string {
	return fmt.Sprintf("history:%s", productID)
}
