package events

import "time"

// OrderItem is one line of an OrderCreated payload. Product name and unit
// price are captured at order time so downstream services never re-read the
// catalog.
type OrderItem struct {
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int32   `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Subtotal    float64 `json:"subtotal"`
}

// OrderCreated is published by the order service once an order and its stock
// reservations are durably committed. It is the trigger for payment processing.
type OrderCreated struct {
	OrderID           int64       `json:"orderId"`
	OrderNumber       string      `json:"orderNumber"`
	UserID            int64       `json:"userId"`
	TotalAmount       float64     `json:"totalAmount"`
	ShippingAddressID int64       `json:"shippingAddressId"`
	PaymentMethod     string      `json:"paymentMethod,omitempty"`
	Items             []OrderItem `json:"items"`
	CreatedAt         time.Time   `json:"createdAt"`
}

// PaymentCompleted is published by the payment service after the gateway
// accepted the charge.
type PaymentCompleted struct {
	PaymentID     string    `json:"paymentId"`
	OrderID       int64     `json:"orderId"`
	UserID        int64     `json:"userId"`
	Amount        float64   `json:"amount"`
	TransactionID string    `json:"transactionId"`
	CompletedAt   time.Time `json:"completedAt"`
}

// PaymentFailed is published on gateway rejection or any processing error.
// PaymentID is empty when the failure happened before a payment record
// existed; the reconciler then compensates by order id alone.
type PaymentFailed struct {
	PaymentID    string    `json:"paymentId,omitempty"`
	OrderID      int64     `json:"orderId"`
	ErrorMessage string    `json:"errorMessage"`
	FailedAt     time.Time `json:"failedAt"`
}

// OrderStatusChanged is published on every order state transition so the
// notification service can message the user out of band.
type OrderStatusChanged struct {
	OrderID     int64     `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	UserID      int64     `json:"userId"`
	OldStatus   string    `json:"oldStatus"`
	NewStatus   string    `json:"newStatus"`
	ChangedAt   time.Time `json:"changedAt"`
}
