// Package remote implements the HTTP client for the record store, the
// authoritative backend behind the entity cache.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/caraseli02/inventory-app-sub002/internal/catalog"
	apperrors "github.com/caraseli02/inventory-app-sub002/internal/errors"
)

// Client talks JSON/HTTP to a record store instance.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a client for the record store at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With("component", "remote"),
	}
}

// AllProducts fetches the full product set.
func (c *Client) AllProducts(ctx context.Context) (catalog.ProductList, error) {
	var out catalog.ProductList
	if err := c.get(ctx, "/api/v1/products", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProductByBarcode looks up a single product. A missing barcode returns
// (nil, nil): "not found" is a result, not an error.
func (c *Client) ProductByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	var out catalog.Product
	err := c.get(ctx, "/api/v1/products/barcode/"+barcode, &out)
	if err != nil {
		var ne *apperrors.NetworkError
		if errors.As(err, &ne) && ne.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// StockMovements fetches a product's movement history, most recent first.
func (c *Client) StockMovements(ctx context.Context, productID string) (catalog.MovementList, error) {
	var out catalog.MovementList
	if err := c.get(ctx, "/api/v1/products/"+productID+"/movements", &out); err != nil {
		return nil, err
	}
	return out, nil
}

type addMovementRequest struct {
	Quantity  int               `json:"quantity"`
	Direction catalog.Direction `json:"direction"`
}

// AddStockMovement performs the authoritative remote write and returns the
// persisted movement.
func (c *Client) AddStockMovement(ctx context.Context, productID string, quantity int, direction catalog.Direction) (*catalog.StockMovement, error) {
	body, err := json.Marshal(addMovementRequest{Quantity: quantity, Direction: direction})
	if err != nil {
		return nil, fmt.Errorf("failed to encode movement: %w", err)
	}
	var out catalog.StockMovement
	if err := c.do(ctx, http.MethodPost, "/api/v1/products/"+productID+"/movements", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &apperrors.NetworkError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "op", op, "error", err)
		return &apperrors.NetworkError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &apperrors.AuthorizationError{Op: op, Status: resp.StatusCode}
	case resp.StatusCode >= 400:
		return &apperrors.NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("%s", serverMessage(resp.Body))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &apperrors.NetworkError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// serverMessage extracts the record store's {"error": …} payload, falling
// back to the raw body.
func serverMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return "request failed"
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(raw))
}
