package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDomainOrderRecomputesTotal(t *testing.T) {
	model := &OrderModel{
		ID:          1,
		OrderNumber: "ORD-20260830120000-0001",
		UserID:      100,
		TotalAmount: 1.00, // stale stored total
		Status:      "PENDING",
		Items: []OrderItemModel{
			{OrderID: 1, ProductID: 1, Quantity: 2, UnitPrice: 49.99, Subtotal: 99.98},
			{OrderID: 1, ProductID: 2, Quantity: 1, UnitPrice: 19.99, Subtotal: 19.99},
		},
	}

	order := toDomainOrder(model)
	assert.InDelta(t, 119.97, order.TotalAmount, 0.001)
}

func TestOrderModelRoundTrip(t *testing.T) {
	model := &OrderModel{
		ID:          7,
		OrderNumber: "ORD-20260830120000-0002",
		UserID:      100,
		Status:      "CONFIRMED",
		PaymentID:   "PAY-1",
		Items: []OrderItemModel{
			{ID: 3, OrderID: 7, ProductID: 5, ProductName: "keyboard", Quantity: 1, UnitPrice: 49.99, Subtotal: 49.99},
		},
	}

	order := toDomainOrder(model)
	back := toOrderModel(order)
	assert.Equal(t, model.OrderNumber, back.OrderNumber)
	assert.Equal(t, model.PaymentID, back.PaymentID)
	assert.Len(t, back.Items, 1)
	assert.Equal(t, model.Items[0].ProductName, back.Items[0].ProductName)
}
