package infrastructure

import (
	"context"
	"errors"
	"time"

	"ecommerce/internal/service/payment/domain"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

// PaymentModel maps the payments table. The unique index on order_id is what
// makes payment creation idempotent.
type PaymentModel struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	PaymentID     string    `gorm:"column:payment_id;type:varchar(64);uniqueIndex;not null"`
	OrderID       int64     `gorm:"column:order_id;uniqueIndex;not null"`
	UserID        int64     `gorm:"column:user_id;index;not null"`
	Amount          float64   `gorm:"column:amount;type:decimal(10,2);not null"`
	Method          string    `gorm:"column:method;type:varchar(32);not null"`
	Status          string    `gorm:"column:status;type:varchar(16);not null"`
	TransactionID   string    `gorm:"column:transaction_id;type:varchar(64)"`
	GatewayResponse string    `gorm:"column:gateway_response;type:varchar(255)"`
	FailureReason   string    `gorm:"column:failure_reason;type:varchar(255)"`
	RefundID        string    `gorm:"column:refund_id;type:varchar(64)"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (PaymentModel) TableName() string {
	return "payments"
}

func toPaymentModel(p *domain.Payment) *PaymentModel {
	return &PaymentModel{
		ID:              p.ID,
		PaymentID:       p.PaymentID,
		OrderID:         p.OrderID,
		UserID:          p.UserID,
		Amount:          p.Amount,
		Method:          p.Method,
		Status:          string(p.Status),
		TransactionID:   p.TransactionID,
		GatewayResponse: p.GatewayResponse,
		FailureReason:   p.FailureReason,
		RefundID:        p.RefundID,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toDomainPayment(m *PaymentModel) *domain.Payment {
	return &domain.Payment{
		ID:              m.ID,
		PaymentID:       m.PaymentID,
		OrderID:         m.OrderID,
		UserID:          m.UserID,
		Amount:          m.Amount,
		Method:          m.Method,
		Status:          domain.PaymentStatus(m.Status),
		TransactionID:   m.TransactionID,
		GatewayResponse: m.GatewayResponse,
		FailureReason:   m.FailureReason,
		RefundID:        m.RefundID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// GormPaymentRepository persists payments in MySQL.
type GormPaymentRepository struct {
	db *gorm.DB
}

func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create inserts the payment. A duplicate key on order_id surfaces as
// ErrDuplicatePayment.
func (r *GormPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	model := toPaymentModel(payment)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return domain.ErrDuplicatePayment
		}
		return err
	}
	payment.ID = model.ID
	return nil
}

func (r *GormPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	return r.db.WithContext(ctx).Save(toPaymentModel(payment)).Error
}

func (r *GormPaymentRepository) FindByPaymentID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	var model PaymentModel
	err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return toDomainPayment(&model), nil
}

func (r *GormPaymentRepository) FindByUser(ctx context.Context, userID int64, offset, limit int) ([]*domain.Payment, error) {
	var models []PaymentModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	payments := make([]*domain.Payment, 0, len(models))
	for i := range models {
		payments = append(payments, toDomainPayment(&models[i]))
	}
	return payments, nil
}

func (r *GormPaymentRepository) FindByOrderID(ctx context.Context, orderID int64) (*domain.Payment, error) {
	var model PaymentModel
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return toDomainPayment(&model), nil
}
