// Package mutation executes named stock mutations with an optimistic-apply /
// confirm-or-rollback protocol against the entity cache.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/caraseli02/inventory-app-sub002/internal/cache"
	"github.com/caraseli02/inventory-app-sub002/internal/catalog"
	apperrors "github.com/caraseli02/inventory-app-sub002/internal/errors"
	"github.com/caraseli02/inventory-app-sub002/internal/notify"
)

// DefaultConfirmThreshold is the quantity above which a mutation requires an
// explicit caller confirmation before it proceeds.
const DefaultConfirmThreshold = 50

// RemoteWriter is the authoritative write surface of the record store.
type RemoteWriter interface {
	AddStockMovement(ctx context.Context, productID string, quantity int, direction catalog.Direction) (*catalog.StockMovement, error)
}

// ConfirmFunc is consulted when a quantity exceeds the confirm threshold.
// Returning false abandons the mutation with no side effects and no error.
type ConfirmFunc func(productID string, quantity int) bool

// AdjustRequest describes one stock adjustment.
type AdjustRequest struct {
	ProductID string            `validate:"required"`
	Quantity  int               `validate:"required,gt=0"`
	Direction catalog.Direction `validate:"required,oneof=IN OUT"`

	// Confirm gates quantities above the threshold. Nil declines.
	Confirm ConfirmFunc `validate:"-"`
}

// Coordinator runs the four-phase mutation protocol: validate, begin
// (snapshot), speculative apply, execute-and-settle. It writes only through
// the cache's mutation API and never holds references into cache storage.
//
// The coordinator does not serialize concurrent mutations on the same key;
// callers are expected to disable the trigger control while Pending reports
// true for that key and direction.
type Coordinator struct {
	cache     *cache.Cache
	remote    RemoteWriter
	notifier  notify.Notifier
	validate  *validator.Validate
	threshold int
	logger    *slog.Logger

	mu      sync.Mutex
	pending map[string]bool
}

// NewCoordinator wires a coordinator. A non-positive threshold falls back to
// DefaultConfirmThreshold.
func NewCoordinator(c *cache.Cache, remote RemoteWriter, notifier notify.Notifier, threshold int, logger *slog.Logger) *Coordinator {
	if threshold <= 0 {
		threshold = DefaultConfirmThreshold
	}
	return &Coordinator{
		cache:     c,
		remote:    remote,
		notifier:  notifier,
		validate:  validator.New(),
		threshold: threshold,
		logger:    logger.With("component", "mutation"),
	}
}

// mutationContext captures everything needed to undo one attempt. It is
// created at begin, consulted only on failure and discarded on settlement.
type mutationContext struct {
	id        string
	snapshots map[string]any
	touched   []string
}

// AdjustStock runs one mutation attempt. The returned bool reports whether
// the mutation was applied; a declined confirmation returns (false, nil).
func (co *Coordinator) AdjustStock(ctx context.Context, req AdjustRequest) (bool, error) {
	// Phase 1: validate. Nothing past this point sees malformed input.
	if err := co.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return false, &apperrors.ValidationError{Field: fe.Field(), Reason: "failed on rule: " + fe.Tag()}
		}
		return false, &apperrors.ValidationError{Reason: err.Error()}
	}
	if req.Quantity > co.threshold {
		if req.Confirm == nil || !req.Confirm(req.ProductID, req.Quantity) {
			co.logger.Info("large quantity not confirmed, mutation abandoned",
				"product_id", req.ProductID, "quantity", req.Quantity)
			return false, nil
		}
	}

	historyKey := catalog.KeyHistory(req.ProductID)

	co.setPending(req.ProductID, req.Direction, true)
	defer co.setPending(req.ProductID, req.Direction, false)

	// Phase 2: begin. Capture deep copies of every entry we will touch.
	mctx := &mutationContext{
		id:        uuid.NewString(),
		snapshots: make(map[string]any),
		touched:   []string{catalog.KeyAllProducts, historyKey},
	}
	for _, key := range mctx.touched {
		if snap, ok := co.cache.Snapshot(key); ok {
			mctx.snapshots[key] = snap
		}
	}

	// Phase 3: speculative apply. Prepend a synthetic movement so the
	// operator sees the adjustment before the round trip completes.
	pendingMove := catalog.NewPendingMovement(req.ProductID, req.Quantity, req.Direction)
	history, _ := cache.Value[catalog.MovementList](co.cache.Read(historyKey))
	co.cache.Write(historyKey, append(catalog.MovementList{pendingMove}, history...))

	co.logger.Debug("mutation begun",
		"mutation_id", mctx.id,
		"product_id", req.ProductID,
		"direction", string(req.Direction),
		"quantity", req.Quantity)

	// Phase 4: execute. The only suspension point in the lifecycle.
	movement, err := co.remote.AddStockMovement(ctx, req.ProductID, req.Quantity, req.Direction)

	// Phase 5: settle.
	if err != nil {
		co.rollback(mctx)
		co.notifier.Push(notify.LevelError, failureMessage(err))
		co.logger.Warn("mutation rolled back", "mutation_id", mctx.id, "product_id", req.ProductID, "error", err)
		return false, err
	}

	co.notifier.Push(notify.LevelSuccess, fmt.Sprintf("Stock updated: %+d units", catalog.SignedQuantity(req.Quantity, req.Direction)))
	co.cache.Invalidate(catalog.KeyAllProducts)
	co.cache.Invalidate(historyKey)
	co.logger.Info("mutation confirmed",
		"mutation_id", mctx.id,
		"product_id", req.ProductID,
		"movement_id", movement.ID)
	return true, nil
}

// rollback restores every touched key to its pre-mutation snapshot. Keys
// that were absent before the attempt are removed outright, so no synthetic
// record survives a failed mutation.
func (co *Coordinator) rollback(mctx *mutationContext) {
	for _, key := range mctx.touched {
		if snap, ok := mctx.snapshots[key]; ok {
			co.cache.Restore(key, snap)
		} else {
			co.cache.Remove(key)
		}
	}
}

// Pending reports whether a mutation for the given product and direction is
// in flight. The UI uses this to disable duplicate submissions.
func (co *Coordinator) Pending(productID string, direction catalog.Direction) bool {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.pending[pendingKey(productID, direction)]
}

func (co *Coordinator) setPending(productID string, direction catalog.Direction, v bool) {
	co.mu.Lock()
	defer co.mu.Unlock()
	if co.pending == nil {
		co.pending = make(map[string]bool)
	}
	if v {
		co.pending[pendingKey(productID, direction)] = true
	} else {
		delete(co.pending, pendingKey(productID, direction))
	}
}

func pendingKey(productID string, direction catalog.Direction) string {
	return productID + ":" + string(direction)
}

func failureMessage(err error) string {
	if err == nil {
		return "Stock update failed"
	}
	return "Stock update failed: " + err.Error()
}
