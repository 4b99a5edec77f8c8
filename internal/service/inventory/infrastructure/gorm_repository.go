package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/pkg/redis"
	"ecommerce/internal/service/inventory/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const productCacheTTL = 5 * time.Minute

// GormProductRepository persists products in MySQL with a Redis read cache.
// Reserve takes a row-level exclusive lock; Release deliberately does not.
type GormProductRepository struct {
	db    *gorm.DB
	cache *redis.Client
}

func NewGormProductRepository(db *gorm.DB, cache *redis.Client) *GormProductRepository {
	return &GormProductRepository{db: db, cache: cache}
}

func productCacheKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	if r.cache != nil {
		if raw, err := r.cache.GetClient().Get(ctx, productCacheKey(id)).Bytes(); err == nil {
			var p domain.Product
			if json.Unmarshal(raw, &p) == nil {
				return &p, nil
			}
		}
	}

	var model ProductModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	product := toDomainProduct(&model)

	if r.cache != nil {
		if raw, err := json.Marshal(product); err == nil {
			if err := r.cache.GetClient().Set(ctx, productCacheKey(id), raw, productCacheTTL).Err(); err != nil {
				logger.Ctx(ctx).Warn().Err(err).Int64("product_id", id).Msg("failed to cache product")
			}
		}
	}
	return product, nil
}

// Reserve locks the product row for the whole read-modify-write so two
// concurrent reservations cannot both pass the availability check.
func (r *GormProductRepository) Reserve(ctx context.Context, productID int64, quantity int32) (bool, error) {
	reserved := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model ProductModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrProductNotFound
			}
			return err
		}
		if model.StockQuantity < quantity {
			return nil // rolled back, reserved stays false
		}
		if err := tx.Model(&ProductModel{}).Where("id = ?", productID).
			Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity)).Error; err != nil {
			return err
		}
		reserved = true
		return nil
	})
	if err != nil {
		return false, err
	}
	r.invalidate(ctx, productID)
	return reserved, nil
}

// Release is a plain increment without the reservation lock; duplicate
// protection lives with the caller (see the order reconciler).
func (r *GormProductRepository) Release(ctx context.Context, productID int64, quantity int32) error {
	res := r.db.WithContext(ctx).Model(&ProductModel{}).Where("id = ?", productID).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	r.invalidate(ctx, productID)
	return nil
}

func (r *GormProductRepository) invalidate(ctx context.Context, productID int64) {
	if r.cache == nil {
		return
	}
	if err := r.cache.GetClient().Del(ctx, productCacheKey(productID)).Err(); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Int64("product_id", productID).Msg("failed to invalidate product cache")
	}
}
