package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/caraseli02/inventory-app-sub002/internal/catalog"
	apperrors "github.com/caraseli02/inventory-app-sub002/internal/errors"
)

// PgStore implements ProductStore on PostgreSQL.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a ProductStore backed by the given connection pool.
func NewPgStore(db *pgxpool.Pool) *PgStore {
	return &PgStore{db: db}
}

const productColumns = `id, name, COALESCE(barcode, ''), COALESCE(category, ''), price::text, stock, min_stock, COALESCE(image_url, '')`

// FindAll returns every product ordered by name.
func (s *PgStore) FindAll(ctx context.Context) ([]catalog.Product, error) {
	rows, err := s.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	out := make([]catalog.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return out, nil
}

// FindByBarcode retrieves the single product carrying the barcode.
// Returns ErrProductNotFound if no product matches.
func (s *PgStore) FindByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	row := s.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE barcode = $1`, barcode)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Movements returns a product's history, most recent first.
func (s *PgStore) Movements(ctx context.Context, productID string) ([]catalog.StockMovement, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, product_id, direction, quantity, created_at
		   FROM stock_movements
		  WHERE product_id = $1
		  ORDER BY created_at DESC, id`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	defer rows.Close()

	out := make([]catalog.StockMovement, 0)
	for rows.Next() {
		var m catalog.StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Direction, &m.Quantity, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read movements: %w", err)
	}
	return out, nil
}

// AddMovement applies the signed quantity to the product's stock and records
// the movement, both inside one transaction.
func (s *PgStore) AddMovement(ctx context.Context, productID string, quantity int, direction catalog.Direction) (*catalog.StockMovement, error) {
	signed := catalog.SignedQuantity(quantity, direction)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var stock int
	err = tx.QueryRow(ctx,
		`UPDATE products SET stock = stock + $1 WHERE id = $2 AND stock + $1 >= 0 RETURNING stock`,
		signed, productID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if err := s.ensureProduct(ctx, productID); err != nil {
				return nil, err
			}
			return nil, apperrors.ErrInsufficientStock
		}
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	m := catalog.StockMovement{ProductID: productID, Direction: direction, Quantity: signed}
	err = tx.QueryRow(ctx,
		`INSERT INTO stock_movements (product_id, direction, quantity)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		productID, direction, signed).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert movement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit movement: %w", err)
	}
	return &m, nil
}

// Create adds a new product.
func (s *PgStore) Create(ctx context.Context, p catalog.Product) (*catalog.Product, error) {
	err := s.db.QueryRow(ctx,
		`INSERT INTO products (name, barcode, category, price, stock, min_stock, image_url)
		 VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, NULLIF($7, ''))
		 RETURNING id`,
		p.Name, p.Barcode, p.Category, p.Price.String(), p.Stock, p.MinStock, p.ImageURL).Scan(&p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &p, nil
}

func (s *PgStore) ensureProduct(ctx context.Context, productID string) error {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return apperrors.ErrProductNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (catalog.Product, error) {
	var p catalog.Product
	var price string
	if err := row.Scan(&p.ID, &p.Name, &p.Barcode, &p.Category, &price, &p.Stock, &p.MinStock, &p.ImageURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("failed to scan product: %w", err)
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return p, fmt.Errorf("failed to parse price %q: %w", price, err)
	}
	p.Price = d
	return p, nil
}
