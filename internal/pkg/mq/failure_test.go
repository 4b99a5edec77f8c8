package mq

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestRetryAttemptParsing(t *testing.T) {
	assert.Equal(t, 0, retryAttempt(kafka.Message{}))

	msg := kafka.Message{Headers: []kafka.Header{
		{Key: HeaderRetryAttempt, Value: []byte("2")},
	}}
	assert.Equal(t, 2, retryAttempt(msg))

	malformed := kafka.Message{Headers: []kafka.Header{
		{Key: HeaderRetryAttempt, Value: []byte("bogus")},
	}}
	assert.Equal(t, 0, retryAttempt(malformed))
}

func TestAppendHeadersReplacesExisting(t *testing.T) {
	existing := []kafka.Header{
		{Key: HeaderRetryAttempt, Value: []byte("1")},
		{Key: "traceparent", Value: []byte("00-abc")},
	}
	out := appendHeaders(existing,
		kafka.Header{Key: HeaderRetryAttempt, Value: []byte("2")},
		kafka.Header{Key: HeaderOriginalTopic, Value: []byte("order.created")},
	)

	values := map[string]string{}
	for _, h := range out {
		values[h.Key] = string(h.Value)
	}
	assert.Equal(t, "2", values[HeaderRetryAttempt])
	assert.Equal(t, "order.created", values[HeaderOriginalTopic])
	assert.Equal(t, "00-abc", values["traceparent"])
	assert.Len(t, out, 3)
}
