package infrastructure

import (
	"context"
	"encoding/json"
	"strconv"

	"ecommerce/internal/events"
	"ecommerce/internal/pkg/mq"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

// PaymentEventProducer publishes payment outcomes, keyed by order id so the
// order service consumes one order's events in order.
type PaymentEventProducer struct {
	completedWriter *kafka.Writer
	failedWriter    *kafka.Writer
}

func NewPaymentEventProducer(brokers []string) *PaymentEventProducer {
	return &PaymentEventProducer{
		completedWriter: mq.NewKafkaWriter(brokers, events.PaymentCompletedKey),
		failedWriter:    mq.NewKafkaWriter(brokers, events.PaymentFailedKey),
	}
}

func (p *PaymentEventProducer) PublishPaymentCompleted(ctx context.Context, event *events.PaymentCompleted) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to encode payment completed event")
	}
	key := []byte(strconv.FormatInt(event.OrderID, 10))
	return errors.Wrap(mq.ProduceMessage(ctx, p.completedWriter, key, payload), "failed to publish payment completed event")
}

func (p *PaymentEventProducer) PublishPaymentFailed(ctx context.Context, event *events.PaymentFailed) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to encode payment failed event")
	}
	key := []byte(strconv.FormatInt(event.OrderID, 10))
	return errors.Wrap(mq.ProduceMessage(ctx, p.failedWriter, key, payload), "failed to publish payment failed event")
}

func (p *PaymentEventProducer) Close() error {
	if err := p.completedWriter.Close(); err != nil {
		return err
	}
	return p.failedWriter.Close()
}
