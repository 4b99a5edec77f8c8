package application

import (
	"context"
	"sync"
	"time"

	"ecommerce/internal/events"
	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/service/payment/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var paymentOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "payment_processed_total",
	Help: "Processed payments by outcome.",
}, []string{"outcome"})

type chargeJob struct {
	paymentID string
	link      trace.Link
}

// Processor is the asynchronous charge pipeline. Jobs are fanned out to a
// fixed pool of workers so slow gateway calls never stall event consumption.
type Processor struct {
	svc     *PaymentService
	jobs    chan chargeJob
	workers int
	wg      sync.WaitGroup
}

func NewProcessor(svc *PaymentService, workers int) *Processor {
	if workers <= 0 {
		workers = 1
	}
	return &Processor{
		svc:     svc,
		jobs:    make(chan chargeJob, workers*4),
		workers: workers,
	}
}

// Start launches the worker pool. Workers drain remaining jobs after ctx is
// cancelled; Stop waits for them.
func (p *Processor) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.run(ctx, job)
			}
		}()
	}
}

// Submit hands a pending payment to the pool. The producing span is attached
// as a link because the charge happens outside the consumer's span lifetime.
func (p *Processor) Submit(ctx context.Context, paymentID string) {
	p.jobs <- chargeJob{
		paymentID: paymentID,
		link:      trace.Link{SpanContext: trace.SpanContextFromContext(ctx)},
	}
}

// Stop closes intake and waits for in-flight charges.
func (p *Processor) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

func (p *Processor) run(ctx context.Context, job chargeJob) {
	ctx, span := p.svc.tracer.Start(ctx, "payment.charge", trace.WithLinks(job.link))
	defer span.End()
	span.SetAttributes(attribute.String("payment.id", job.paymentID))

	if err := p.svc.executeCharge(ctx, job.paymentID); err != nil {
		span.RecordError(err)
		logger.Ctx(ctx).Error().Err(err).
			Str("payment_id", job.paymentID).
			Msg("charge execution failed")
	}
}

// executeCharge drives one payment through the gateway and publishes the
// outcome.
func (s *PaymentService) executeCharge(ctx context.Context, paymentID string) error {
	payment, err := s.repo.FindByPaymentID(ctx, paymentID)
	if err != nil {
		return err
	}
	if err := payment.BeginProcessing(); err != nil {
		// Already driven to a terminal state, nothing to do.
		logger.Ctx(ctx).Warn().Err(err).Str("payment_id", paymentID).Msg("skipping charge")
		return nil
	}
	if err := s.repo.Update(ctx, payment); err != nil {
		return err
	}

	result, err := s.gateway.Charge(ctx, payment.PaymentID, payment.Amount, payment.Method)
	if err != nil {
		return s.failPayment(ctx, payment, "gateway unreachable: "+err.Error())
	}
	if !result.Approved() {
		return s.failPayment(ctx, payment, result.Message)
	}

	if err := payment.Complete(result.TransactionID, result.Message); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, payment); err != nil {
		return err
	}
	paymentOutcomes.WithLabelValues("completed").Inc()
	logger.Ctx(ctx).Info().
		Str("payment_id", payment.PaymentID).
		Int64("order_id", payment.OrderID).
		Str("transaction_id", result.TransactionID).
		Msg("payment completed")

	return s.publisher.PublishPaymentCompleted(ctx, &events.PaymentCompleted{
		PaymentID:     payment.PaymentID,
		OrderID:       payment.OrderID,
		UserID:        payment.UserID,
		Amount:        payment.Amount,
		TransactionID: payment.TransactionID,
		CompletedAt:   time.Now(),
	})
}

func (s *PaymentService) failPayment(ctx context.Context, payment *domain.Payment, reason string) error {
	if err := payment.Fail(reason); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, payment); err != nil {
		return err
	}
	paymentOutcomes.WithLabelValues("failed").Inc()
	logger.Ctx(ctx).Warn().
		Str("payment_id", payment.PaymentID).
		Int64("order_id", payment.OrderID).
		Str("reason", reason).
		Msg("payment failed")

	return s.publisher.PublishPaymentFailed(ctx, &events.PaymentFailed{
		PaymentID:    payment.PaymentID,
		OrderID:      payment.OrderID,
		ErrorMessage: reason,
		FailedAt:     time.Now(),
	})
}
