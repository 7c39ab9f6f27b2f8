package mutation

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caraseli02/inventory-app-sub002/internal/cache"
	"github.com/caraseli02/inventory-app-sub002/internal/catalog"
	apperrors "github.com/caraseli02/inventory-app-sub002/internal/errors"
	"github.com/caraseli02/inventory-app-sub002/internal/notify"
)

// mockRemote is a scripted RemoteWriter.
type mockRemote struct {
	calls    int
	err      error
	movement *catalog.StockMovement
}

func (m *mockRemote) AddStockMovement(_ context.Context, productID string, quantity int, direction catalog.Direction) (*catalog.StockMovement, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.movement != nil {
		return m.movement, nil
	}
	return &catalog.StockMovement{
		ID:        uuid.NewString(),
		ProductID: productID,
		Direction: direction,
		Quantity:  catalog.SignedQuantity(quantity, direction),
		CreatedAt: time.Now(),
	}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestCoordinator(remote RemoteWriter) (*Coordinator, *cache.Cache, *notify.Queue) {
	c := cache.New(time.Minute, testLogger())
	q := notify.NewQueue(5, time.Minute)
	co := NewCoordinator(c, remote, q, 0, testLogger())
	return co, c, q
}

func seedHistory(c *cache.Cache, productID string, movements ...catalog.StockMovement) {
	c.Write(catalog.KeyHistory(productID), catalog.MovementList(movements))
}

func Test_AdjustStock_Success(t *testing.T) {
	// given a seeded cache and a remote that accepts the movement
	remote := &mockRemote{}
	co, c, q := newTestCoordinator(remote)
	defer q.Close()
	productID := uuid.NewString()
	c.Write(catalog.KeyAllProducts, catalog.ProductList{{ID: productID, Name: "Espresso Beans", Stock: 10}})
	seedHistory(c, productID)

	// when
	applied, err := co.AdjustStock(context.Background(), AdjustRequest{
		ProductID: productID,
		Quantity:  5,
		Direction: catalog.DirectionIn,
	})

	// then the mutation was applied exactly once
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 1, remote.calls)

	// and both touched keys were invalidated so the next read revalidates
	assert.Equal(t, cache.StateStale, c.Read(catalog.KeyAllProducts).State)
	assert.Equal(t, cache.StateStale, c.Read(catalog.KeyHistory(productID)).State)

	// and the operator got a success toast with the signed quantity
	notifications := q.Active()
	require.Len(t, notifications, 1)
	assert.Equal(t, notify.LevelSuccess, notifications[0].Level)
	assert.Equal(t, "Stock updated: +5 units", notifications[0].Message)
}

func Test_AdjustStock_SuccessOutboundMessageIsNegative(t *testing.T) {
	remote := &mockRemote{}
	co, c, q := newTestCoordinator(remote)
	defer q.Close()
	productID := uuid.NewString()
	seedHistory(c, productID)

	applied, err := co.AdjustStock(context.Background(), AdjustRequest{
		ProductID: productID,
		Quantity:  3,
		Direction: catalog.DirectionOut,
	})

	require.NoError(t, err)
	assert.True(t, applied)
	notifications := q.Active()
	require.Len(t, notifications, 1)
	assert.Equal(t, "Stock updated: -3 units", notifications[0].Message)
}

func Test_AdjustStock_FailureRollsBackHistory(t *testing.T) {
	// given a history with one confirmed movement and a remote that fails
	remoteErr := &apperrors.NetworkError{Op: "POST /movements", Status: 500, Err: errors.New("boom")}
	remote := &mockRemote{err: remoteErr}
	co, c, q := newTestCoordinator(remote)
	defer q.Close()
	productID := uuid.NewString()
	confirmed := catalog.StockMovement{ID: uuid.NewString(), ProductID: productID, Direction: catalog.DirectionIn, Quantity: 2}
	c.Write(catalog.KeyAllProducts, catalog.ProductList{{ID: productID, Name: "Oat Milk", Stock: 6}})
	seedHistory(c, productID, confirmed)

	// when
	applied, err := co.AdjustStock(context.Background(), AdjustRequest{
		ProductID: productID,
		Quantity:  4,
		Direction: catalog.DirectionOut,
	})

	// then the error propagates and nothing was applied
	require.ErrorIs(t, err, remoteErr)
	assert.False(t, applied)

	// and the history is byte-for-byte the pre-mutation snapshot: no
	// synthetic movement survives
	history, ok := cache.Value[catalog.MovementList](c.Read(catalog.KeyHistory(productID)))
	require.True(t, ok)
	require.Len(t, history, 1)
	assert.Equal(t, confirmed.ID, history[0].ID)
	assert.False(t, history[0].Pending())

	// and the operator got an error toast
	notifications := q.Active()
	require.Len(t, notifications, 1)
	assert.Equal(t, notify.LevelError, notifications[0].Level)
	assert.Contains(t, notifications[0].Message, "Stock update failed")
}

func Test_AdjustStock_FailureRemovesPreviouslyAbsentHistory(t *testing.T) {
	// given no cached history for the product and a failing remote
	remote := &mockRemote{err: errors.New("connection refused")}
	co, c, q := newTestCoordinator(remote)
	defer q.Close()
	productID := uuid.NewString()

	// when
	applied, err := co.AdjustStock(context.Background(), AdjustRequest{
		ProductID: productID,
		Quantity:  1,
		Direction: catalog.DirectionIn,
	})

	// then the speculative entry is gone entirely, not restored as empty
	require.Error(t, err)
	assert.False(t, applied)
	assert.Equal(t, cache.StateAbsent, c.Read(catalog.KeyHistory(productID)).State)
}

func Test_AdjustStock_SpeculativeMovementVisibleDuringFlight(t *testing.T) {
	// given a remote that lets us observe the cache mid-flight
	co, c, q := newTestCoordinator(nil)
	defer q.Close()
	productID := uuid.NewString()
	seedHistory(c, productID)

	observed := make(chan catalog.MovementList, 1)
	co.remote = remoteFunc(func(ctx context.Context, id string, qty int, dir catalog.Direction) (*catalog.StockMovement, error) {
		history, _ := cache.Value[catalog.MovementList](c.Read(catalog.KeyHistory(id)))
		observed <- history
		return &catalog.StockMovement{ID: uuid.NewString(), ProductID: id, Direction: dir, Quantity: qty}, nil
	})

	// when
	applied, err := co.AdjustStock(context.Background(), AdjustRequest{
		ProductID: productID,
		Quantity:  7,
		Direction: catalog.DirectionIn,
	})

	// then the remote saw the pending movement at the head of the history
	require.NoError(t, err)
	assert.True(t, applied)
	history := <-observed
	require.Len(t, history, 1)
	assert.True(t, history[0].Pending())
	assert.Equal(t, 7, history[0].Quantity)
}

// remoteFunc adapts a function to the RemoteWriter interface.
type remoteFunc func(ctx context.Context, productID string, quantity int, direction catalog.Direction) (*catalog.StockMovement, error)

func (f remoteFunc) AddStockMovement(ctx context.Context, productID string, quantity int, direction catalog.Direction) (*catalog.StockMovement, error) {
	return f(ctx, productID, quantity, direction)
}

func Test_AdjustStock_Validation(t *testing.T) {
	testCases := []struct {
		name string
		req  AdjustRequest
	}{
		{
			name: "zero quantity",
			req:  AdjustRequest{ProductID: "p1", Quantity: 0, Direction: catalog.DirectionIn},
		},
		{
			name: "negative quantity",
			req:  AdjustRequest{ProductID: "p1", Quantity: -3, Direction: catalog.DirectionOut},
		},
		{
			name: "missing product",
			req:  AdjustRequest{Quantity: 5, Direction: catalog.DirectionIn},
		},
		{
			name: "unknown direction",
			req:  AdjustRequest{ProductID: "p1", Quantity: 5, Direction: "SIDEWAYS"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			remote := &mockRemote{}
			co, _, q := newTestCoordinator(remote)
			defer q.Close()

			// when
			applied, err := co.AdjustStock(context.Background(), tc.req)

			// then the request never reached the remote
			assert.False(t, applied)
			assert.True(t, apperrors.IsValidation(err), "expected a validation error, got %v", err)
			assert.Zero(t, remote.calls)
		})
	}
}

func Test_AdjustStock_ConfirmGate(t *testing.T) {
	t.Run("declined confirmation abandons with no side effects", func(t *testing.T) {
		// given a quantity above the threshold and a declining confirm
		remote := &mockRemote{}
		co, c, q := newTestCoordinator(remote)
		defer q.Close()
		productID := uuid.NewString()
		seedHistory(c, productID)

		// when
		applied, err := co.AdjustStock(context.Background(), AdjustRequest{
			ProductID: productID,
			Quantity:  DefaultConfirmThreshold + 1,
			Direction: catalog.DirectionIn,
			Confirm:   func(string, int) bool { return false },
		})

		// then: deliberate no-op, not an error
		require.NoError(t, err)
		assert.False(t, applied)
		assert.Zero(t, remote.calls)
		assert.Empty(t, q.Active())
		history, _ := cache.Value[catalog.MovementList](c.Read(catalog.KeyHistory(productID)))
		assert.Empty(t, history, "no speculative movement before confirmation")
	})

	t.Run("nil confirm declines", func(t *testing.T) {
		remote := &mockRemote{}
		co, _, q := newTestCoordinator(remote)
		defer q.Close()

		applied, err := co.AdjustStock(context.Background(), AdjustRequest{
			ProductID: uuid.NewString(),
			Quantity:  DefaultConfirmThreshold + 1,
			Direction: catalog.DirectionIn,
		})

		require.NoError(t, err)
		assert.False(t, applied)
		assert.Zero(t, remote.calls)
	})

	t.Run("accepted confirmation proceeds", func(t *testing.T) {
		remote := &mockRemote{}
		co, _, q := newTestCoordinator(remote)
		defer q.Close()

		applied, err := co.AdjustStock(context.Background(), AdjustRequest{
			ProductID: uuid.NewString(),
			Quantity:  DefaultConfirmThreshold + 1,
			Direction: catalog.DirectionIn,
			Confirm:   func(string, int) bool { return true },
		})

		require.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, 1, remote.calls)
	})

	t.Run("threshold quantity does not require confirmation", func(t *testing.T) {
		remote := &mockRemote{}
		co, _, q := newTestCoordinator(remote)
		defer q.Close()

		applied, err := co.AdjustStock(context.Background(), AdjustRequest{
			ProductID: uuid.NewString(),
			Quantity:  DefaultConfirmThreshold,
			Direction: catalog.DirectionIn,
		})

		require.NoError(t, err)
		assert.True(t, applied)
	})
}

func Test_Pending_TracksInFlightMutations(t *testing.T) {
	// given a remote that blocks until released
	co, _, q := newTestCoordinator(nil)
	defer q.Close()
	productID := uuid.NewString()

	started := make(chan struct{})
	release := make(chan struct{})
	co.remote = remoteFunc(func(_ context.Context, id string, qty int, dir catalog.Direction) (*catalog.StockMovement, error) {
		close(started)
		<-release
		return &catalog.StockMovement{ID: uuid.NewString(), ProductID: id, Direction: dir, Quantity: qty}, nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = co.AdjustStock(context.Background(), AdjustRequest{
			ProductID: productID,
			Quantity:  2,
			Direction: catalog.DirectionOut,
		})
	}()

	// when the mutation is in flight
	<-started

	// then the pending flag is set for that product and direction only
	assert.True(t, co.Pending(productID, catalog.DirectionOut))
	assert.False(t, co.Pending(productID, catalog.DirectionIn))

	// and it clears once the mutation settles
	close(release)
	<-done
	assert.False(t, co.Pending(productID, catalog.DirectionOut))
}
