package infrastructure

import (
	"context"
	"math/rand"
	"time"

	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/service/payment/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SimulatedGateway stands in for a card processor. Each charge sleeps a fixed
// delay and then approves with the configured probability; the rare
// processing error exercises the "99" path downstream.
type SimulatedGateway struct {
	tracer      trace.Tracer
	delay       time.Duration
	successRate float64

	// overridable in tests for determinism
	randFloat func() float64
	sleep     func(ctx context.Context, d time.Duration)
}

func NewSimulatedGateway(tracer trace.Tracer, delay time.Duration, successRate float64) *SimulatedGateway {
	return &SimulatedGateway{
		tracer:      tracer,
		delay:       delay,
		successRate: successRate,
		randFloat:   rand.Float64,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (g *SimulatedGateway) Charge(ctx context.Context, paymentID string, amount float64, method string) (port.ChargeResult, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.Charge", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("payment.id", paymentID),
		attribute.Float64("payment.amount", amount),
		attribute.String("payment.method", method),
	)

	g.sleep(ctx, g.delay)

	roll := g.randFloat()
	switch {
	case roll < g.successRate:
		result := port.ChargeResult{
			Code:          port.CodeApproved,
			TransactionID: "TXN-" + uuid.NewString(),
			Message:       "approved",
		}
		logger.Ctx(ctx).Debug().Str("payment_id", paymentID).Msg("gateway approved charge")
		return result, nil
	case roll < g.successRate+(1-g.successRate)/2:
		span.SetAttributes(attribute.String("gateway.code", port.CodeDeclined))
		return port.ChargeResult{Code: port.CodeDeclined, Message: "card declined"}, nil
	default:
		span.SetAttributes(attribute.String("gateway.code", port.CodeError))
		return port.ChargeResult{Code: port.CodeError, Message: "processor error"}, nil
	}
}

// Refund always succeeds in the simulation; a real gateway would fail here
// too.
func (g *SimulatedGateway) Refund(ctx context.Context, transactionID string, amount float64) (port.RefundResult, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.Refund", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", transactionID))

	g.sleep(ctx, g.delay/2)
	return port.RefundResult{
		Code:     port.CodeApproved,
		RefundID: "REFUND-" + uuid.NewString(),
		Message:  "refunded",
	}, nil
}
