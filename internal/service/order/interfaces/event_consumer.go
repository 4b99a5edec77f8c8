package interfaces

import (
	"context"
	"encoding/json"

	"ecommerce/internal/events"
	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/pkg/mq"
	"ecommerce/internal/service/order/application"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"
)

// PaymentEventConsumer reconciles payment outcomes onto orders. Both the main
// topic and its retry topic run the same handler; poisoned messages end up in
// the dead-letter topic via the failure handler.
type PaymentEventConsumer struct {
	consumers []*mq.Consumer
}

func NewPaymentEventConsumer(brokers []string, topology *events.Topology, svc *application.OrderApplicationService, tracer trace.Tracer, retryMaxAttempts int) *PaymentEventConsumer {
	c := &PaymentEventConsumer{}

	completed := topology.Route(events.PaymentCompletedKey)
	failed := topology.Route(events.PaymentFailedKey)

	completedFailure := mq.NewFailureHandler(
		mq.NewKafkaWriter(brokers, completed.RetryTopic),
		mq.NewKafkaWriter(brokers, completed.DLTTopic),
		retryMaxAttempts,
	)
	failedFailure := mq.NewFailureHandler(
		mq.NewKafkaWriter(brokers, failed.RetryTopic),
		mq.NewKafkaWriter(brokers, failed.DLTTopic),
		retryMaxAttempts,
	)

	onCompleted := func(ctx context.Context, msg kafka.Message) error {
		var event events.PaymentCompleted
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return errors.Wrap(err, "malformed payment completed event")
		}
		return svc.HandlePaymentCompleted(ctx, &event)
	}
	onFailed := func(ctx context.Context, msg kafka.Message) error {
		var event events.PaymentFailed
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return errors.Wrap(err, "malformed payment failed event")
		}
		return svc.HandlePaymentFailed(ctx, &event)
	}

	for _, sub := range []struct {
		topic   string
		failure *mq.FailureHandler
		handler mq.HandlerFunc
	}{
		{completed.Topic, completedFailure, onCompleted},
		{completed.RetryTopic, completedFailure, onCompleted},
		{failed.Topic, failedFailure, onFailed},
		{failed.RetryTopic, failedFailure, onFailed},
	} {
		reader := mq.NewKafkaReader(brokers, sub.topic, events.OrderServiceGroup)
		c.consumers = append(c.consumers, mq.NewConsumer(reader, tracer, sub.failure, sub.handler))
	}

	// Dead letters only get logged; recovery is a manual replay.
	for _, dlt := range []string{completed.DLTTopic, failed.DLTTopic} {
		reader := mq.NewKafkaReader(brokers, dlt, events.OrderServiceGroup)
		c.consumers = append(c.consumers, mq.NewConsumer(reader, tracer, nil, logDeadLetter))
	}
	return c
}

// Consumers exposes the loops for the caller's errgroup.
func (c *PaymentEventConsumer) Consumers() []*mq.Consumer {
	return c.consumers
}

func (c *PaymentEventConsumer) Close() {
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
