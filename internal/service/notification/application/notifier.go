package application

import (
	"context"
	"fmt"
	"time"

	"ecommerce/internal/events"
	"ecommerce/internal/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var notificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "notifications_sent_total",
	Help: "User notifications by event kind.",
}, []string{"kind"})

// Notification is the payload pushed to the user's open connections.
type Notification struct {
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	OrderID int64     `json:"orderId,omitempty"`
	SentAt  time.Time `json:"sentAt"`
}

// Notifier renders saga events into user-facing messages. It is strictly
// best effort: a user with no open connection simply misses the push, and no
// notification failure may ever travel back into the saga.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) NotifyOrderCreated(ctx context.Context, event *events.OrderCreated) {
	n.push(ctx, event.UserID, Notification{
		Kind:    "order_created",
		Message: fmt.Sprintf("Order %s placed, total %.2f. Awaiting payment.", event.OrderNumber, event.TotalAmount),
		OrderID: event.OrderID,
		SentAt:  time.Now(),
	})
}

func (n *Notifier) NotifyPaymentCompleted(ctx context.Context, event *events.PaymentCompleted) {
	n.push(ctx, event.UserID, Notification{
		Kind:    "payment_completed",
		Message: fmt.Sprintf("Payment of %.2f received for order #%d.", event.Amount, event.OrderID),
		OrderID: event.OrderID,
		SentAt:  time.Now(),
	})
}

// NotifyPaymentFailed has no user id on the event; the message is logged for
// the operators instead of pushed.
func (n *Notifier) NotifyPaymentFailed(ctx context.Context, event *events.PaymentFailed) {
	logger.Ctx(ctx).Warn().
		Int64("order_id", event.OrderID).
		Str("payment_id", event.PaymentID).
		Str("error", event.ErrorMessage).
		Msg("payment failed, order will be cancelled")
	notificationsSent.WithLabelValues("payment_failed").Inc()
}

func (n *Notifier) NotifyOrderStatusChanged(ctx context.Context, event *events.OrderStatusChanged) {
	n.push(ctx, event.UserID, Notification{
		Kind:    "order_status_changed",
		Message: fmt.Sprintf("Order %s is now %s.", event.OrderNumber, event.NewStatus),
		OrderID: event.OrderID,
		SentAt:  time.Now(),
	})
}

func (n *Notifier) push(ctx context.Context, userID int64, note Notification) {
	notificationsSent.WithLabelValues(note.Kind).Inc()
	if !n.hub.Online(userID) {
		logger.Ctx(ctx).Debug().
			Int64("user_id", userID).
			Str("kind", note.Kind).
			Msg("user offline, notification dropped")
		return
	}
	n.hub.Push(ctx, userID, note)
	logger.Ctx(ctx).Info().
		Int64("user_id", userID).
		Str("kind", note.Kind).
		Msg("notification pushed")
}
