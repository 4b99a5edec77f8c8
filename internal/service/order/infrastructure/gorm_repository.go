package infrastructure

import (
	"context"
	"errors"

	"ecommerce/internal/service/order/domain"

	"gorm.io/gorm"
)

// GormOrderRepository persists orders and their items in MySQL.
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Save upserts the order together with its items in one transaction.
func (r *GormOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := toOrderModel(order)
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		// Items are immutable after creation; only write them the first time.
		for i := range model.Items {
			if model.Items[i].ID == 0 {
				model.Items[i].OrderID = model.ID
				if err := tx.Create(&model.Items[i]).Error; err != nil {
					return err
				}
			}
		}
		order.ID = model.ID
		for i := range model.Items {
			order.Items[i].ID = model.Items[i].ID
		}
		return nil
	})
}

// Delete removes the order and its items. Used only by the saga compensation
// path before any payment activity exists.
func (r *GormOrderRepository) Delete(ctx context.Context, orderID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&OrderItemModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&OrderModel{}, orderID).Error
	})
}

func (r *GormOrderRepository) FindByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Preload("Items").First(&model, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return toDomainOrder(&model), nil
}

func (r *GormOrderRepository) FindByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Preload("Items").
		Where("order_number = ?", orderNumber).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return toDomainOrder(&model), nil
}

func (r *GormOrderRepository) FindByUser(ctx context.Context, userID int64, offset, limit int) ([]*domain.Order, error) {
	var models []OrderModel
	err := r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		orders = append(orders, toDomainOrder(&models[i]))
	}
	return orders, nil
}
