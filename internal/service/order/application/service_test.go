package application

import (
	"context"
	"testing"

	"ecommerce/internal/events"
	"ecommerce/internal/service/order/domain"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

type reserveCall struct {
	productID int64
	quantity  int32
}

type fakeInventory struct {
	denyProduct int64
	failProduct int64
	reserves    []reserveCall
	releases    []reserveCall
}

func (f *fakeInventory) Reserve(_ context.Context, productID int64, quantity int32) (bool, error) {
	if productID == f.failProduct {
		return false, errors.New("inventory unreachable")
	}
	if productID == f.denyProduct {
		return false, nil
	}
	f.reserves = append(f.reserves, reserveCall{productID, quantity})
	return true, nil
}

func (f *fakeInventory) Release(_ context.Context, productID int64, quantity int32) error {
	f.releases = append(f.releases, reserveCall{productID, quantity})
	return nil
}

type fakeCart struct {
	lines    []domain.CartLine
	cleared  bool
	restored []domain.CartLine
}

func (f *fakeCart) Items(context.Context, int64) ([]domain.CartLine, error) {
	return f.lines, nil
}

func (f *fakeCart) Clear(context.Context, int64) error {
	f.cleared = true
	return nil
}

func (f *fakeCart) Restore(_ context.Context, _ int64, lines []domain.CartLine) error {
	f.cleared = false
	f.restored = lines
	return nil
}

type fakeRepo struct {
	nextID  int64
	orders  map[int64]*domain.Order
	deleted []int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: make(map[int64]*domain.Order)}
}

func (f *fakeRepo) Save(_ context.Context, order *domain.Order) error {
	if order.ID == 0 {
		f.nextID++
		order.ID = f.nextID
	}
	copied := *order
	f.orders[order.ID] = &copied
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, orderID int64) error {
	delete(f.orders, orderID)
	f.deleted = append(f.deleted, orderID)
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, orderID int64) (*domain.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeRepo) FindByNumber(_ context.Context, orderNumber string) (*domain.Order, error) {
	for _, order := range f.orders {
		if order.OrderNumber == orderNumber {
			copied := *order
			return &copied, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (f *fakeRepo) FindByUser(_ context.Context, userID int64, _, _ int) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range f.orders {
		if order.UserID == userID {
			copied := *order
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakePublisher struct {
	failCreated  bool
	created      []*events.OrderCreated
	statusEvents []*events.OrderStatusChanged
}

func (f *fakePublisher) PublishOrderCreated(_ context.Context, event *events.OrderCreated) error {
	if f.failCreated {
		return errors.New("broker unavailable")
	}
	f.created = append(f.created, event)
	return nil
}

func (f *fakePublisher) PublishOrderStatusChanged(_ context.Context, event *events.OrderStatusChanged) error {
	f.statusEvents = append(f.statusEvents, event)
	return nil
}

type fakeLocker struct{}

func (fakeLocker) WithLock(ctx context.Context, _ int64, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc       *OrderApplicationService
	inventory *fakeInventory
	cart      *fakeCart
	repo      *fakeRepo
	publisher *fakePublisher
}

func newFixture(lines []domain.CartLine) *fixture {
	f := &fixture{
		inventory: &fakeInventory{},
		cart:      &fakeCart{lines: lines},
		repo:      newFakeRepo(),
		publisher: &fakePublisher{},
	}
	f.svc = NewOrderApplicationService(
		f.repo, f.cart, f.inventory, f.publisher, fakeLocker{}, otel.Tracer("test"))
	return f
}

func twoLines() []domain.CartLine {
	return []domain.CartLine{
		{ProductID: 1, ProductName: "keyboard", Quantity: 2, UnitPrice: 49.99},
		{ProductID: 2, ProductName: "mouse", Quantity: 1, UnitPrice: 19.99},
	}
}

func TestCreateOrderHappyPath(t *testing.T) {
	f := newFixture(twoLines())

	order, err := f.svc.CreateOrder(context.Background(), 100, 7, "")
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, domain.StatusPending, order.Status)
	assert.InDelta(t, 119.97, order.TotalAmount, 0.001)
	assert.Len(t, f.inventory.reserves, 2)
	assert.Empty(t, f.inventory.releases)
	assert.True(t, f.cart.cleared)
	require.Len(t, f.publisher.created, 1)
	assert.Equal(t, order.ID, f.publisher.created[0].OrderID)
	assert.Len(t, f.publisher.created[0].Items, 2)

	stored, err := f.repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, stored.OrderNumber)
}

func TestCreateOrderCarriesPaymentMethod(t *testing.T) {
	f := newFixture(twoLines())

	_, err := f.svc.CreateOrder(context.Background(), 100, 7, "PAYPAL")
	require.NoError(t, err)
	require.Len(t, f.publisher.created, 1)
	assert.Equal(t, "PAYPAL", f.publisher.created[0].PaymentMethod)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.CreateOrder(context.Background(), 100, 7, "")
	assert.ErrorIs(t, err, domain.ErrCartEmpty)
}

func TestCreateOrderSecondLineOutOfStock(t *testing.T) {
	f := newFixture(twoLines())
	f.inventory.denyProduct = 2

	_, err := f.svc.CreateOrder(context.Background(), 100, 7, "")

	var oos *domain.OutOfStockError
	require.ErrorAs(t, err, &oos)
	assert.Equal(t, int64(2), oos.ProductID)
	assert.Equal(t, "mouse", oos.ProductName)

	// The first line's reservation is rolled back, nothing else happened.
	require.Len(t, f.inventory.releases, 1)
	assert.Equal(t, reserveCall{1, 2}, f.inventory.releases[0])
	assert.Empty(t, f.repo.orders)
	assert.False(t, f.cart.cleared)
	assert.Empty(t, f.publisher.created)
}

func TestCreateOrderInventoryUnreachable(t *testing.T) {
	f := newFixture(twoLines())
	f.inventory.failProduct = 1

	_, err := f.svc.CreateOrder(context.Background(), 100, 7, "")
	require.Error(t, err)
	assert.Empty(t, f.inventory.releases)
	assert.Empty(t, f.repo.orders)
}

func TestCreateOrderPublishFailureCompensatesEverything(t *testing.T) {
	f := newFixture(twoLines())
	f.publisher.failCreated = true

	_, err := f.svc.CreateOrder(context.Background(), 100, 7, "")
	require.Error(t, err)

	// Both reservations released, order deleted, cart restored.
	assert.Len(t, f.inventory.releases, 2)
	assert.Empty(t, f.repo.orders)
	assert.Len(t, f.repo.deleted, 1)
	assert.False(t, f.cart.cleared)
	assert.Len(t, f.cart.restored, 2)
}

func createOrder(t *testing.T, f *fixture) *domain.Order {
	t.Helper()
	order, err := f.svc.CreateOrder(context.Background(), 100, 7, "")
	require.NoError(t, err)
	return order
}

func TestCancelOrderReleasesStockOnce(t *testing.T) {
	f := newFixture(twoLines())
	order := createOrder(t, f)

	cancelled, err := f.svc.CancelOrder(context.Background(), order.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)

	require.Len(t, f.inventory.releases, 2)
	assert.Equal(t, reserveCall{1, 2}, f.inventory.releases[0])
	assert.Equal(t, reserveCall{2, 1}, f.inventory.releases[1])
	require.Len(t, f.publisher.statusEvents, 1)
	assert.Equal(t, "CANCELLED", f.publisher.statusEvents[0].NewStatus)
}

func TestCancelOrderWrongUser(t *testing.T) {
	f := newFixture(twoLines())
	order := createOrder(t, f)

	_, err := f.svc.CancelOrder(context.Background(), order.ID, 999)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	assert.Empty(t, f.inventory.releases)
}

func TestCancelShippedOrderRejected(t *testing.T) {
	f := newFixture(twoLines())
	order := createOrder(t, f)

	require.NoError(t, f.svc.HandlePaymentCompleted(context.Background(), &events.PaymentCompleted{
		OrderID: order.ID, PaymentID: "PAY-1",
	}))
	_, err := f.svc.UpdateOrderStatus(context.Background(), order.ID, domain.StatusShipped)
	require.NoError(t, err)

	_, err = f.svc.CancelOrder(context.Background(), order.ID, 100)
	var invalid *domain.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Empty(t, f.inventory.releases)
}

func TestHandlePaymentCompletedConfirmsOrder(t *testing.T) {
	f := newFixture(twoLines())
	order := createOrder(t, f)

	event := &events.PaymentCompleted{OrderID: order.ID, PaymentID: "PAY-1"}
	require.NoError(t, f.svc.HandlePaymentCompleted(context.Background(), event))

	stored, _ := f.repo.FindByID(context.Background(), order.ID)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
	assert.Equal(t, "PAY-1", stored.PaymentID)
	require.Len(t, f.publisher.statusEvents, 1)

	// Redelivery changes nothing and publishes nothing.
	require.NoError(t, f.svc.HandlePaymentCompleted(context.Background(), event))
	assert.Len(t, f.publisher.statusEvents, 1)
}

func TestHandlePaymentCompletedAfterUserCancel(t *testing.T) {
	f := newFixture(twoLines())
	order := createOrder(t, f)

	_, err := f.svc.CancelOrder(context.Background(), order.ID, 100)
	require.NoError(t, err)
	releasesAfterCancel := len(f.inventory.releases)

	require.NoError(t, f.svc.HandlePaymentCompleted(context.Background(), &events.PaymentCompleted{
		OrderID: order.ID, PaymentID: "PAY-1",
	}))

	stored, _ := f.repo.FindByID(context.Background(), order.ID)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	assert.Len(t, f.inventory.releases, releasesAfterCancel)
}

func TestHandlePaymentFailedCancelsAndReleasesOnce(t *testing.T) {
	f := newFixture(twoLines())
	order := createOrder(t, f)

	event := &events.PaymentFailed{OrderID: order.ID, PaymentID: "PAY-1", ErrorMessage: "card declined"}
	require.NoError(t, f.svc.HandlePaymentFailed(context.Background(), event))

	stored, _ := f.repo.FindByID(context.Background(), order.ID)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	assert.Equal(t, domain.PaymentFailed, stored.PaymentStatus)
	assert.Len(t, f.inventory.releases, 2)

	// Redelivery must not release stock a second time.
	require.NoError(t, f.svc.HandlePaymentFailed(context.Background(), event))
	assert.Len(t, f.inventory.releases, 2)
}

func TestHandlePaymentFailedWithEmptyPaymentID(t *testing.T) {
	f := newFixture(twoLines())
	order := createOrder(t, f)

	require.NoError(t, f.svc.HandlePaymentFailed(context.Background(), &events.PaymentFailed{
		OrderID: order.ID, ErrorMessage: "failed to record payment",
	}))

	stored, _ := f.repo.FindByID(context.Background(), order.ID)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	assert.Empty(t, stored.PaymentID)
	assert.Len(t, f.inventory.releases, 2)
}

func TestGetOrderOwnership(t *testing.T) {
	f := newFixture(twoLines())
	order := createOrder(t, f)

	_, err := f.svc.GetOrder(context.Background(), order.ID, 999)
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	got, err := f.svc.GetOrder(context.Background(), order.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}
