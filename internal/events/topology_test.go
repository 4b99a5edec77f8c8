package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopologyRoutes(t *testing.T) {
	topology := NewTopology()

	for _, key := range []string{OrderCreatedKey, OrderStatusChangedKey, PaymentCompletedKey, PaymentFailedKey} {
		route := topology.Route(key)
		assert.Equal(t, key, route.Topic)
		assert.Equal(t, key+".retry", route.RetryTopic)
		assert.Equal(t, key+".dlt", route.DLTTopic)
	}
}

func TestTopologyUnknownEventPanics(t *testing.T) {
	topology := NewTopology()
	assert.Panics(t, func() { topology.Route("order.deleted") })
}
