package interfaces

import (
	"context"
	"encoding/json"

	"ecommerce/internal/events"
	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/pkg/mq"
	"ecommerce/internal/service/payment/application"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"
)

// OrderEventConsumer feeds order creations into the payment service. Main and
// retry topics share one handler; exhausted retries land in the dead-letter
// topic.
type OrderEventConsumer struct {
	consumers []*mq.Consumer
}

func NewOrderEventConsumer(brokers []string, topology *events.Topology, svc *application.PaymentService, tracer trace.Tracer, retryMaxAttempts int) *OrderEventConsumer {
	c := &OrderEventConsumer{}
	route := topology.Route(events.OrderCreatedKey)

	failure := mq.NewFailureHandler(
		mq.NewKafkaWriter(brokers, route.RetryTopic),
		mq.NewKafkaWriter(brokers, route.DLTTopic),
		retryMaxAttempts,
	)
	handler := func(ctx context.Context, msg kafka.Message) error {
		var event events.OrderCreated
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return errors.Wrap(err, "malformed order created event")
		}
		return svc.HandleOrderCreated(ctx, &event)
	}

	for _, topic := range []string{route.Topic, route.RetryTopic} {
		reader := mq.NewKafkaReader(brokers, topic, events.PaymentServiceGroup)
		c.consumers = append(c.consumers, mq.NewConsumer(reader, tracer, failure, handler))
	}

	dltReader := mq.NewKafkaReader(brokers, route.DLTTopic, events.PaymentServiceGroup)
	c.consumers = append(c.consumers, mq.NewConsumer(dltReader, tracer, nil, logDeadLetter))
	return c
}

func (c *OrderEventConsumer) Consumers() []*mq.Consumer {
	return c.consumers
}

func (c *OrderEventConsumer) Close() {
	for _, consumer := range c.consumers {
		if err := consumer.Close(); err != nil {
			logger.Ctx(context.Background()).Error().Err(err).Msg("failed to close consumer")
		}
	}
}

func logDeadLetter(ctx context.Context, msg kafka.Message) error {
	event := logger.Ctx(ctx).Error().
		Str("topic", msg.Topic).
		Int64("offset", msg.Offset).
		Str("payload", string(msg.Value))
	for _, h := range msg.Headers {
		switch h.Key {
		case mq.HeaderOriginalTopic, mq.HeaderExceptionMessage, mq.HeaderRetryAttempt:
			event = event.Str(h.Key, string(h.Value))
		}
	}
	event.Msg("dead letter received")
	return nil
}
