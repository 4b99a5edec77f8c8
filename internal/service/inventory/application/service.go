package application

import (
	"context"

	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/service/inventory/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var reservationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "inventory_stock_reservations_total",
	Help: "Stock reservation attempts by outcome.",
}, []string{"outcome"})

// InventoryService exposes the reserve/release operations of the reservation
// port.
type InventoryService struct {
	repo   domain.ProductRepository
	tracer trace.Tracer
}

func NewInventoryService(repo domain.ProductRepository, tracer trace.Tracer) *InventoryService {
	return &InventoryService{repo: repo, tracer: tracer}
}

func (s *InventoryService) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	return s.repo.FindByID(ctx, productID)
}

// Reserve decrements stock when available. A false return means insufficient
// stock, which the caller treats as out-of-stock, not as a failure.
func (s *InventoryService) Reserve(ctx context.Context, productID int64, quantity int32) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.Reserve")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("product.id", productID),
		attribute.Int("quantity", int(quantity)),
	)

	reserved, err := s.repo.Reserve(ctx, productID, quantity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stock reservation failed")
		reservationsTotal.WithLabelValues("error").Inc()
		return false, err
	}
	if !reserved {
		logger.Ctx(ctx).Warn().Int64("product_id", productID).Int32("quantity", quantity).
			Msg("insufficient stock")
		span.AddEvent("insufficient stock")
		reservationsTotal.WithLabelValues("insufficient").Inc()
		return false, nil
	}

	logger.Ctx(ctx).Info().Int64("product_id", productID).Int32("quantity", quantity).
		Msg("stock reserved")
	reservationsTotal.WithLabelValues("reserved").Inc()
	return true, nil
}

// Release returns previously reserved stock.
func (s *InventoryService) Release(ctx context.Context, productID int64, quantity int32) error {
	ctx, span := s.tracer.Start(ctx, "inventory.Release")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("product.id", productID),
		attribute.Int("quantity", int(quantity)),
	)

	if err := s.repo.Release(ctx, productID, quantity); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stock release failed")
		return err
	}
	logger.Ctx(ctx).Info().Int64("product_id", productID).Int32("quantity", quantity).
		Msg("stock released")
	return nil
}
