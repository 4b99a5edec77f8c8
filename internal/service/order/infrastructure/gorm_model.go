package infrastructure

import (
	"time"

	"ecommerce/internal/service/order/domain"
)

// OrderModel maps the orders table.
type OrderModel struct {
	ID                int64            `gorm:"primaryKey;autoIncrement"`
	OrderNumber       string           `gorm:"column:order_number;type:varchar(32);uniqueIndex;not null"`
	UserID            int64            `gorm:"column:user_id;index;not null"`
	TotalAmount       float64          `gorm:"column:total_amount;type:decimal(10,2);not null"`
	ShippingAddressID int64            `gorm:"column:shipping_address_id;not null"`
	Status            string           `gorm:"column:status;type:varchar(16);not null"`
	PaymentStatus     string           `gorm:"column:payment_status;type:varchar(16);not null"`
	PaymentID         string           `gorm:"column:payment_id;type:varchar(64)"`
	Items             []OrderItemModel `gorm:"foreignKey:OrderID"`
	CreatedAt         time.Time        `gorm:"column:created_at"`
	UpdatedAt         time.Time        `gorm:"column:updated_at"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel maps the order_items table.
type OrderItemModel struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	OrderID     int64   `gorm:"column:order_id;index;not null"`
	ProductID   int64   `gorm:"column:product_id;not null"`
	ProductName string  `gorm:"column:product_name;type:varchar(255);not null"`
	Quantity    int32   `gorm:"column:quantity;not null"`
	UnitPrice   float64 `gorm:"column:unit_price;type:decimal(10,2);not null"`
	Subtotal    float64 `gorm:"column:subtotal;type:decimal(10,2);not null"`
}

func (OrderItemModel) TableName() string {
	return "order_items"
}

func toOrderModel(o *domain.Order) *OrderModel {
	m := &OrderModel{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		UserID:            o.UserID,
		TotalAmount:       o.TotalAmount,
		ShippingAddressID: o.ShippingAddressID,
		Status:            string(o.Status),
		PaymentStatus:     string(o.PaymentStatus),
		PaymentID:         o.PaymentID,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	for _, item := range o.Items {
		m.Items = append(m.Items, OrderItemModel{
			ID:          item.ID,
			OrderID:     o.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}
	return m
}

func toDomainOrder(m *OrderModel) *domain.Order {
	o := &domain.Order{
		ID:                m.ID,
		OrderNumber:       m.OrderNumber,
		UserID:            m.UserID,
		TotalAmount:       m.TotalAmount,
		ShippingAddressID: m.ShippingAddressID,
		Status:            domain.OrderStatus(m.Status),
		PaymentStatus:     domain.PaymentStatus(m.PaymentStatus),
		PaymentID:         m.PaymentID,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	for _, item := range m.Items {
		o.Items = append(o.Items, domain.OrderItem{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}
	// The stored total is never trusted on the way out.
	if len(o.Items) > 0 {
		o.TotalAmount = o.ComputeTotal()
	}
	return o
}
