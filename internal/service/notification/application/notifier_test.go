package application

import (
	"context"
	"testing"

	"ecommerce/internal/events"

	"github.com/stretchr/testify/assert"
)

func TestNotifierDropsForOfflineUser(t *testing.T) {
	notifier := NewNotifier(NewHub())

	// No connection registered; every push must be a silent drop.
	assert.NotPanics(t, func() {
		notifier.NotifyOrderCreated(context.Background(), &events.OrderCreated{
			OrderID: 1, OrderNumber: "ORD-20260830120000-0001", UserID: 42, TotalAmount: 10,
		})
		notifier.NotifyPaymentCompleted(context.Background(), &events.PaymentCompleted{
			OrderID: 1, UserID: 42, Amount: 10,
		})
		notifier.NotifyPaymentFailed(context.Background(), &events.PaymentFailed{
			OrderID: 1, ErrorMessage: "card declined",
		})
		notifier.NotifyOrderStatusChanged(context.Background(), &events.OrderStatusChanged{
			OrderID: 1, UserID: 42, NewStatus: "CONFIRMED",
		})
	})
}

func TestHubOnline(t *testing.T) {
	hub := NewHub()
	assert.False(t, hub.Online(42))
}
