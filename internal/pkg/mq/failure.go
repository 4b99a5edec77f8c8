package mq

import (
	"context"
	"strconv"

	"ecommerce/internal/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// Headers stamped onto retried and dead-lettered messages so the DLT consumer
// can reconstruct where a message came from and why it failed.
const (
	HeaderOriginalTopic     = "x-original-topic"
	HeaderOriginalPartition = "x-original-partition"
	HeaderOriginalOffset    = "x-original-offset"
	HeaderRetryAttempt      = "x-retry-attempt"
	HeaderExceptionMessage  = "x-exception-message"
)

// FailureHandler implements the redelivery policy: a message whose handler
// failed is republished to the retry topic with an incremented attempt header,
// and diverted to the dead-letter topic once the retry budget is spent.
// Offsets are committed either way, so the original queue never wedges.
type FailureHandler struct {
	retryWriter *kafka.Writer
	dltWriter   *kafka.Writer
	maxAttempts int
}

func NewFailureHandler(retryWriter, dltWriter *kafka.Writer, maxAttempts int) *FailureHandler {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &FailureHandler{retryWriter: retryWriter, dltWriter: dltWriter, maxAttempts: maxAttempts}
}

func (f *FailureHandler) Handle(ctx context.Context, msg kafka.Message, procErr error) {
	attempt := retryAttempt(msg) + 1

	forwarded := kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
		Headers: appendHeaders(msg.Headers,
			kafka.Header{Key: HeaderOriginalTopic, Value: []byte(msg.Topic)},
			kafka.Header{Key: HeaderOriginalPartition, Value: []byte(strconv.Itoa(msg.Partition))},
			kafka.Header{Key: HeaderOriginalOffset, Value: []byte(strconv.FormatInt(msg.Offset, 10))},
			kafka.Header{Key: HeaderRetryAttempt, Value: []byte(strconv.Itoa(attempt))},
			kafka.Header{Key: HeaderExceptionMessage, Value: []byte(procErr.Error())},
		),
	}

	writer := f.retryWriter
	destination := "retry"
	if attempt > f.maxAttempts {
		writer = f.dltWriter
		destination = "dlt"
	}

	if err := writer.WriteMessages(ctx, forwarded); err != nil {
		// Losing a poison message is worse than reprocessing it; leave a loud
		// trail for operators.
		logger.Ctx(ctx).Error().Err(err).
			Str("destination", destination).
			Str("key", string(msg.Key)).
			Msg("failed to forward unprocessable message")
		return
	}

	logger.Ctx(ctx).Warn().
		Str("destination", destination).
		Int("attempt", attempt).
		Str("key", string(msg.Key)).
		Err(procErr).
		Msg("message handed to redelivery chain")
}

func retryAttempt(msg kafka.Message) int {
	for _, h := range msg.Headers {
		if h.Key == HeaderRetryAttempt {
			n, err := strconv.Atoi(string(h.Value))
			if err != nil {
				return 0
			}
			return n
		}
	}
	return 0
}

func appendHeaders(existing []kafka.Header, updates ...kafka.Header) []kafka.Header {
	out := make([]kafka.Header, 0, len(existing)+len(updates))
	for _, h := range existing {
		replaced := false
		for _, u := range updates {
			if h.Key == u.Key {
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, h)
		}
	}
	return append(out, updates...)
}
