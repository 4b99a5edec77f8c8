package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrDuplicatePayment marks a second create for the same order id. Callers
	// treat it as a redelivered event, not a failure.
	ErrDuplicatePayment = errors.New("payment already exists for order")
)

// GatewayError reports a processor-side rejection or outage, carrying the
// gateway's response code when one came back.
type GatewayError struct {
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("payment gateway error: %s", e.Message)
	}
	return fmt.Sprintf("payment gateway error (code %s): %s", e.Code, e.Message)
}

// InvalidPaymentStateError reports an operation attempted from the wrong
// status.
type InvalidPaymentStateError struct {
	Operation string
	From      PaymentStatus
}

func (e *InvalidPaymentStateError) Error() string {
	return fmt.Sprintf("cannot %s payment in status %s", e.Operation, e.From)
}
