package domain

// OrderStatus is the order lifecycle state.
//
//	PENDING -> CONFIRMED -> SHIPPED -> DELIVERED
//	PENDING/CONFIRMED -> CANCELLED
//
// CANCELLED and DELIVERED are terminal.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// PaymentStatus mirrors the payment outcome on the order record.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)
