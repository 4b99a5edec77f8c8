package domain

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLines() []CartLine {
	return []CartLine{
		{ProductID: 1, ProductName: "keyboard", Quantity: 2, UnitPrice: 49.99},
		{ProductID: 2, ProductName: "mouse", Quantity: 1, UnitPrice: 19.99},
	}
}

func TestNewOrderComputesTotals(t *testing.T) {
	order, err := NewOrder(100, 7, sampleLines())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, PaymentPending, order.PaymentStatus)
	require.Len(t, order.Items, 2)
	assert.InDelta(t, 99.98, order.Items[0].Subtotal, 0.001)
	assert.InDelta(t, 19.99, order.Items[1].Subtotal, 0.001)
	assert.InDelta(t, 119.97, order.TotalAmount, 0.001)
	assert.InDelta(t, order.TotalAmount, order.ComputeTotal(), 0.001)
}

func TestNewOrderEmptyCart(t *testing.T) {
	_, err := NewOrder(100, 7, nil)
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestGenerateOrderNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-\d{14}-\d{4}$`)
	for i := 0; i < 10; i++ {
		assert.Regexp(t, pattern, GenerateOrderNumber())
	}
}

func TestApplyPaymentCompleted(t *testing.T) {
	order, _ := NewOrder(100, 7, sampleLines())

	require.NoError(t, order.ApplyPaymentCompleted("PAY-1"))
	assert.Equal(t, StatusConfirmed, order.Status)
	assert.Equal(t, PaymentCompleted, order.PaymentStatus)
	assert.Equal(t, "PAY-1", order.PaymentID)

	// Same outcome again is a no-op.
	require.NoError(t, order.ApplyPaymentCompleted("PAY-1"))
	assert.Equal(t, StatusConfirmed, order.Status)
}

func TestApplyPaymentCompletedAfterCancel(t *testing.T) {
	order, _ := NewOrder(100, 7, sampleLines())
	require.NoError(t, order.Cancel())

	err := order.ApplyPaymentCompleted("PAY-1")
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, StatusCancelled, order.Status)
}

func TestApplyPaymentFailed(t *testing.T) {
	order, _ := NewOrder(100, 7, sampleLines())

	transitioned, err := order.ApplyPaymentFailed("PAY-1")
	require.NoError(t, err)
	assert.True(t, transitioned)
	assert.Equal(t, StatusCancelled, order.Status)
	assert.Equal(t, PaymentFailed, order.PaymentStatus)

	// A redelivered failure must not claim the transition again.
	transitioned, err = order.ApplyPaymentFailed("PAY-1")
	require.NoError(t, err)
	assert.False(t, transitioned)
}

func TestCancelTransitions(t *testing.T) {
	order, _ := NewOrder(100, 7, sampleLines())
	require.NoError(t, order.Cancel())

	order, _ = NewOrder(100, 7, sampleLines())
	require.NoError(t, order.ApplyPaymentCompleted("PAY-1"))
	require.NoError(t, order.Cancel())

	order, _ = NewOrder(100, 7, sampleLines())
	require.NoError(t, order.ApplyPaymentCompleted("PAY-1"))
	require.NoError(t, order.MarkShipped())
	var invalid *InvalidTransitionError
	assert.ErrorAs(t, order.Cancel(), &invalid)
}

func TestFulfillmentTransitions(t *testing.T) {
	order, _ := NewOrder(100, 7, sampleLines())

	var invalid *InvalidTransitionError
	assert.ErrorAs(t, order.MarkShipped(), &invalid)

	require.NoError(t, order.ApplyPaymentCompleted("PAY-1"))
	require.NoError(t, order.MarkShipped())
	assert.ErrorAs(t, order.MarkShipped(), &invalid)
	require.NoError(t, order.MarkDelivered())
	assert.ErrorAs(t, order.MarkDelivered(), &invalid)
	assert.Equal(t, StatusDelivered, order.Status)
}
