package checkout

import "errors"

var (
	// ErrNotFound means the customer or the cart is absent, or the cart
	// belongs to another customer. Nothing was called yet.
	ErrNotFound = errors.New("checkout: not found")
	// ErrStockUnavailable means the read-only availability check failed.
	ErrStockUnavailable = errors.New("checkout: stock unavailable")
	// ErrPaymentDeclined means authorization failed; stock was not touched.
	ErrPaymentDeclined = errors.New("checkout: payment declined")
	// ErrStockDebitFailed means the debit failed after authorization and the
	// payment was cancelled.
	ErrStockDebitFailed = errors.New("checkout: stock debit failed")
	// ErrCompensationFailed accompanies ErrStockDebitFailed when the payment
	// cancellation itself returned an error.
	ErrCompensationFailed = errors.New("checkout: payment cancellation failed")
)
