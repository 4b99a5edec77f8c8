package mq

import (
	"context"
	"errors"
	"io"

	"ecommerce/internal/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"
)

// HandlerFunc processes one message. The ctx already carries the producer's
// trace context. A non-nil error sends the message down the redelivery path;
// the offset is committed either way.
type HandlerFunc func(ctx context.Context, msg kafka.Message) error

// Consumer runs a fetch/handle/commit loop over one topic. Failures go to the
// FailureHandler when one is configured, otherwise they are logged and the
// message is dropped.
type Consumer struct {
	reader  *kafka.Reader
	tracer  trace.Tracer
	failure *FailureHandler
	handler HandlerFunc
}

func NewConsumer(reader *kafka.Reader, tracer trace.Tracer, failure *FailureHandler, handler HandlerFunc) *Consumer {
	return &Consumer{reader: reader, tracer: tracer, failure: failure, handler: handler}
}

// Run consumes until ctx is cancelled or the reader is closed.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		c.process(ctx, msg)
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("topic", msg.Topic).
				Int64("offset", msg.Offset).
				Msg("failed to commit offset")
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	msgCtx := ExtractTraceContext(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "consume "+msg.Topic, trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	if err := c.handler(msgCtx, msg); err != nil {
		span.RecordError(err)
		if c.failure != nil {
			c.failure.Handle(msgCtx, msg, err)
			return
		}
		logger.Ctx(msgCtx).Error().Err(err).
			Str("topic", msg.Topic).
			Int64("offset", msg.Offset).
			Msg("message handling failed, dropping")
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
