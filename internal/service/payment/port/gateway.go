package port

import "context"

// Gateway response codes, mirrored from the card network conventions the
// simulated gateway follows.
const (
	CodeApproved = "00"
	CodeDeclined = "05"
	CodeError    = "99"
)

// ChargeResult is the gateway's answer to one charge attempt.
type ChargeResult struct {
	Code          string
	TransactionID string
	Message       string
}

func (r ChargeResult) Approved() bool { return r.Code == CodeApproved }

// RefundResult is the gateway's answer to a refund.
type RefundResult struct {
	Code     string
	RefundID string
	Message  string
}

func (r RefundResult) Approved() bool { return r.Code == CodeApproved }

// PaymentGateway is the outbound port to the charge processor. A non-nil
// error is a transport problem; business declines come back in the result
// code.
type PaymentGateway interface {
	Charge(ctx context.Context, paymentID string, amount float64, method string) (ChargeResult, error)
	Refund(ctx context.Context, transactionID string, amount float64) (RefundResult, error)
}
