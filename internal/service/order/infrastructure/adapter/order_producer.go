package adapter

import (
	"context"
	"encoding/json"
	"strconv"

	"ecommerce/internal/events"
	"ecommerce/internal/pkg/mq"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

// OrderEventProducer publishes the order service's events. One writer per
// topic; messages are keyed by order id so one order's events stay ordered.
type OrderEventProducer struct {
	createdWriter *kafka.Writer
	statusWriter  *kafka.Writer
}

func NewOrderEventProducer(brokers []string) *OrderEventProducer {
	return &OrderEventProducer{
		createdWriter: mq.NewKafkaWriter(brokers, events.OrderCreatedKey),
		statusWriter:  mq.NewKafkaWriter(brokers, events.OrderStatusChangedKey),
	}
}

func (p *OrderEventProducer) PublishOrderCreated(ctx context.Context, event *events.OrderCreated) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to encode order created event")
	}
	key := []byte(strconv.FormatInt(event.OrderID, 10))
	return errors.Wrap(mq.ProduceMessage(ctx, p.createdWriter, key, payload), "failed to publish order created event")
}

func (p *OrderEventProducer) PublishOrderStatusChanged(ctx context.Context, event *events.OrderStatusChanged) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to encode status change event")
	}
	key := []byte(strconv.FormatInt(event.OrderID, 10))
	return errors.Wrap(mq.ProduceMessage(ctx, p.statusWriter, key, payload), "failed to publish status change event")
}

func (p *OrderEventProducer) Close() error {
	if err := p.createdWriter.Close(); err != nil {
		return err
	}
	return p.statusWriter.Close()
}
