package interfaces

import (
	"context"
	"encoding/json"

	"ecommerce/internal/events"
	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/pkg/mq"
	"ecommerce/internal/service/notification/application"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"
)

// NotificationConsumer listens on every saga topic. Handlers never return an
// error: a notification that cannot be delivered is dropped, never retried,
// so this consumer group needs no retry or dead-letter topics.
type NotificationConsumer struct {
	consumers []*mq.Consumer
}

func NewNotificationConsumer(brokers []string, topology *events.Topology, notifier *application.Notifier, tracer trace.Tracer) *NotificationConsumer {
	c := &NotificationConsumer{}

	handlers := map[string]mq.HandlerFunc{
		events.OrderCreatedKey: func(ctx context.Context, msg kafka.Message) error {
			var event events.OrderCreated
			if !decode(ctx, msg, &event) {
				return nil
			}
			notifier.NotifyOrderCreated(ctx, &event)
			return nil
		},
		events.PaymentCompletedKey: func(ctx context.Context, msg kafka.Message) error {
			var event events.PaymentCompleted
			if !decode(ctx, msg, &event) {
				return nil
			}
			notifier.NotifyPaymentCompleted(ctx, &event)
			return nil
		},
		events.PaymentFailedKey: func(ctx context.Context, msg kafka.Message) error {
			var event events.PaymentFailed
			if !decode(ctx, msg, &event) {
				return nil
			}
			notifier.NotifyPaymentFailed(ctx, &event)
			return nil
		},
		events.OrderStatusChangedKey: func(ctx context.Context, msg kafka.Message) error {
			var event events.OrderStatusChanged
			if !decode(ctx, msg, &event) {
				return nil
			}
			notifier.NotifyOrderStatusChanged(ctx, &event)
			return nil
		},
	}

	for name, handler := range handlers {
		route := topology.Route(name)
		reader := mq.NewKafkaReader(brokers, route.Topic, events.NotificationServiceGroup)
		c.consumers = append(c.consumers, mq.NewConsumer(reader, tracer, nil, handler))
	}
	return c
}

func (c *NotificationConsumer) Consumers() []*mq.Consumer {
	return c.consumers
}

func (c *NotificationConsumer) Close() {
	for _, consumer := range c.consumers {
		if err := consumer.Close(); err != nil {
			logger.Ctx(context.Background()).Error().Err(err).Msg("failed to close consumer")
		}
	}
}

func decode(ctx context.Context, msg kafka.Message, out any) bool {
	if err := json.Unmarshal(msg.Value, out); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("topic", msg.Topic).
			Msg("malformed event, dropping")
		return false
	}
	return true
}
