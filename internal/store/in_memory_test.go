package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caraseli02/inventory-app-sub002/internal/catalog"
	apperrors "github.com/caraseli02/inventory-app-sub002/internal/errors"
)

func newSeededStore(t *testing.T) (*InMemoryStore, catalog.Product) {
	t.Helper()
	s := NewInMemoryStore()
	created, err := s.Create(context.Background(), catalog.Product{
		Name:     "Espresso Beans",
		Barcode:  "4006381333931",
		Category: "Coffee",
		Price:    decimal.NewFromFloat(18.50),
		Stock:    24,
		MinStock: 10,
	})
	require.NoError(t, err)
	return s, *created
}

func Test_InMemoryStore_Create_AssignsID(t *testing.T) {
	s := NewInMemoryStore()

	created, err := s.Create(context.Background(), catalog.Product{Name: "Ceramic Mug"})

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
}

func Test_InMemoryStore_FindAll_SortedByName(t *testing.T) {
	// given products created out of order
	s := NewInMemoryStore()
	ctx := context.Background()
	for _, name := range []string{"Paper Cups", "Ceramic Mug", "Espresso Beans"} {
		_, err := s.Create(ctx, catalog.Product{Name: name})
		require.NoError(t, err)
	}

	// when
	products, err := s.FindAll(ctx)

	// then the listing is stable, ordered by name
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "Ceramic Mug", products[0].Name)
	assert.Equal(t, "Espresso Beans", products[1].Name)
	assert.Equal(t, "Paper Cups", products[2].Name)
}

func Test_InMemoryStore_FindByBarcode(t *testing.T) {
	s, created := newSeededStore(t)

	found, err := s.FindByBarcode(context.Background(), "4006381333931")

	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func Test_InMemoryStore_FindByBarcode_NotFound(t *testing.T) {
	s, _ := newSeededStore(t)

	_, err := s.FindByBarcode(context.Background(), "000")

	require.ErrorIs(t, err, apperrors.ErrProductNotFound)
}

func Test_InMemoryStore_AddMovement_AppliesSignedQuantity(t *testing.T) {
	// given a product with 24 units
	s, created := newSeededStore(t)
	ctx := context.Background()

	// when stock moves out and then in
	out, err := s.AddMovement(ctx, created.ID, 4, catalog.DirectionOut)
	require.NoError(t, err)
	in, err := s.AddMovement(ctx, created.ID, 10, catalog.DirectionIn)
	require.NoError(t, err)

	// then the movements carry signed quantities
	assert.Equal(t, -4, out.Quantity)
	assert.Equal(t, 10, in.Quantity)

	// and the product stock reflects both
	products, err := s.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, products[0].Stock)
}

func Test_InMemoryStore_AddMovement_RejectsOverdraw(t *testing.T) {
	// given a product with 24 units
	s, created := newSeededStore(t)

	// when more than the available stock moves out
	_, err := s.AddMovement(context.Background(), created.ID, 25, catalog.DirectionOut)

	// then the movement is rejected and the stock is untouched
	require.ErrorIs(t, err, apperrors.ErrInsufficientStock)
	products, findErr := s.FindAll(context.Background())
	require.NoError(t, findErr)
	assert.Equal(t, 24, products[0].Stock)
}

func Test_InMemoryStore_AddMovement_UnknownProduct(t *testing.T) {
	s := NewInMemoryStore()

	_, err := s.AddMovement(context.Background(), "no-such-id", 1, catalog.DirectionIn)

	require.ErrorIs(t, err, apperrors.ErrProductNotFound)
}

func Test_InMemoryStore_Movements_MostRecentFirst(t *testing.T) {
	// given three movements recorded in order
	s, created := newSeededStore(t)
	ctx := context.Background()
	first, err := s.AddMovement(ctx, created.ID, 1, catalog.DirectionIn)
	require.NoError(t, err)
	second, err := s.AddMovement(ctx, created.ID, 2, catalog.DirectionIn)
	require.NoError(t, err)
	third, err := s.AddMovement(ctx, created.ID, 3, catalog.DirectionOut)
	require.NoError(t, err)

	// when
	movements, err := s.Movements(ctx, created.ID)

	// then the newest movement leads
	require.NoError(t, err)
	require.Len(t, movements, 3)
	assert.Equal(t, third.ID, movements[0].ID)
	assert.Equal(t, second.ID, movements[1].ID)
	assert.Equal(t, first.ID, movements[2].ID)
}

func Test_InMemoryStore_Movements_UnknownProduct(t *testing.T) {
	s := NewInMemoryStore()

	_, err := s.Movements(context.Background(), "no-such-id")

	require.ErrorIs(t, err, apperrors.ErrProductNotFound)
}

func Test_InMemoryStore_Seed(t *testing.T) {
	s := NewInMemoryStore()

	s.Seed()

	products, err := s.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 4)
}
