package checkout

import "github.com/shopspring/decimal"

// State is a step of the checkout pipeline.
type State string

const (
	StateStart        State = "START"
	StateStockChecked State = "STOCK_CHECKED"
	StatePriced       State = "PRICED"
	StateAuthorized   State = "AUTHORIZED"
	StateStockDebited State = "STOCK_DEBITED"
	StateDone         State = "DONE"

	StateRejectedStock           State = "REJECTED_STOCK"
	StateRejectedPayment         State = "REJECTED_PAYMENT"
	StateRejectedDebitWithRefund State = "REJECTED_DEBIT_WITH_REFUND"
)

// Terminal reports whether no further step follows s.
func (s State) Terminal() bool {
	switch s {
	case StateDone, StateRejectedStock, StateRejectedPayment, StateRejectedDebitWithRefund:
		return true
	default:
		return false
	}
}

const (
	msgDone          = "purchase completed"
	msgNotFound      = "customer or cart not found"
	msgStock         = "items are out of stock"
	msgPayment       = "payment not authorized"
	msgDebitRefunded = "stock debit failed; payment cancelled"
)

// Result is the outcome of one checkout attempt.
type Result struct {
	Success       bool            `json:"success"`
	TransactionID string          `json:"transactionId,omitempty"`
	Message       string          `json:"message"`
	State         State           `json:"state"`
	Total         decimal.Decimal `json:"total"`
}
