package domain

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePaymentIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^PAY-\d+-[0-9A-F]{8}$`)
	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		id := GeneratePaymentID()
		assert.Regexp(t, pattern, id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 20)
}

func TestPaymentLifecycle(t *testing.T) {
	p := NewPayment(42, 100, 119.97, "PAYPAL")
	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, int64(42), p.OrderID)
	assert.Equal(t, "PAYPAL", p.Method)

	require.NoError(t, p.BeginProcessing())
	assert.Equal(t, StatusProcessing, p.Status)

	require.NoError(t, p.Complete("TXN-abc", "approved"))
	assert.Equal(t, StatusCompleted, p.Status)
	assert.Equal(t, "TXN-abc", p.TransactionID)
	assert.Equal(t, "approved", p.GatewayResponse)

	require.NoError(t, p.Refund("REFUND-xyz"))
	assert.Equal(t, StatusRefunded, p.Status)
	assert.Equal(t, "REFUND-xyz", p.RefundID)
}

func TestNewPaymentDefaultsMethod(t *testing.T) {
	p := NewPayment(42, 100, 10, "")
	assert.Equal(t, DefaultMethod, p.Method)
}

func TestPaymentFailFromProcessing(t *testing.T) {
	p := NewPayment(42, 100, 10, "")
	require.NoError(t, p.BeginProcessing())
	require.NoError(t, p.Fail("card declined"))
	assert.Equal(t, StatusFailed, p.Status)
	assert.Equal(t, "card declined", p.FailureReason)
	assert.Equal(t, "card declined", p.GatewayResponse)

	var invalid *InvalidPaymentStateError
	assert.ErrorAs(t, p.Complete("TXN-1", "approved"), &invalid)
	assert.ErrorAs(t, p.Fail("again"), &invalid)
}

func TestInvalidPaymentTransitions(t *testing.T) {
	p := NewPayment(42, 100, 10, "")

	var invalid *InvalidPaymentStateError
	assert.ErrorAs(t, p.Complete("TXN-1", "approved"), &invalid)
	assert.ErrorAs(t, p.Refund("REFUND-1"), &invalid)

	require.NoError(t, p.BeginProcessing())
	assert.ErrorAs(t, p.BeginProcessing(), &invalid)
	assert.ErrorAs(t, p.Refund("REFUND-1"), &invalid)

	require.NoError(t, p.Complete("TXN-1", "approved"))
	assert.ErrorAs(t, p.Fail("late"), &invalid)

	require.NoError(t, p.Refund("REFUND-1"))
	assert.ErrorAs(t, p.Refund("REFUND-2"), &invalid)
}
