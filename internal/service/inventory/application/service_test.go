package application

import (
	"context"
	"testing"

	"ecommerce/internal/service/inventory/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

type fakeProductRepo struct {
	stock map[int64]int32
}

func (f *fakeProductRepo) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	quantity, ok := f.stock[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &domain.Product{ID: id, StockQuantity: quantity}, nil
}

func (f *fakeProductRepo) Reserve(_ context.Context, productID int64, quantity int32) (bool, error) {
	current, ok := f.stock[productID]
	if !ok {
		return false, domain.ErrProductNotFound
	}
	if current < quantity {
		return false, nil
	}
	f.stock[productID] = current - quantity
	return true, nil
}

func (f *fakeProductRepo) Release(_ context.Context, productID int64, quantity int32) error {
	f.stock[productID] += quantity
	return nil
}

func newService(stock map[int64]int32) (*InventoryService, *fakeProductRepo) {
	repo := &fakeProductRepo{stock: stock}
	return NewInventoryService(repo, otel.Tracer("test")), repo
}

func TestReserveDecrementsStock(t *testing.T) {
	svc, repo := newService(map[int64]int32{1: 10})

	reserved, err := svc.Reserve(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.Equal(t, int32(7), repo.stock[1])
}

func TestReserveInsufficientStock(t *testing.T) {
	svc, repo := newService(map[int64]int32{1: 2})

	reserved, err := svc.Reserve(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, int32(2), repo.stock[1], "stock untouched on refusal")
}

func TestReserveUnknownProduct(t *testing.T) {
	svc, _ := newService(map[int64]int32{})

	_, err := svc.Reserve(context.Background(), 99, 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestReleaseRestoresStock(t *testing.T) {
	svc, repo := newService(map[int64]int32{1: 10})

	reserved, err := svc.Reserve(context.Background(), 1, 4)
	require.NoError(t, err)
	require.True(t, reserved)

	require.NoError(t, svc.Release(context.Background(), 1, 4))
	assert.Equal(t, int32(10), repo.stock[1])
}

func TestGetProduct(t *testing.T) {
	svc, _ := newService(map[int64]int32{5: 1})

	product, err := svc.GetProduct(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), product.ID)

	_, err = svc.GetProduct(context.Background(), 6)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
