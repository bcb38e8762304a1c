package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrUnknownTransaction is returned when cancelling a transaction the gateway never issued.
var ErrUnknownTransaction = errors.New("payment: unknown transaction")

// Authorization is the gateway's answer to an authorization request.
type Authorization struct {
	Authorized    bool   `json:"authorized"`
	TransactionID string `json:"transactionId"`
}

// Service abstracts the payment gateway used by checkout.
type Service interface {
	// Authorize reserves amount on the customer's payment method.
	Authorize(ctx context.Context, customerID int64, amount decimal.Decimal) (Authorization, error)
	// Cancel voids a previous authorization.
	Cancel(ctx context.Context, transactionID string, customerID int64) error
}
