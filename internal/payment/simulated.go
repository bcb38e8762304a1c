package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Cancellation records one Cancel call accepted by Simulated.
type Cancellation struct {
	TransactionID string
	CustomerID    int64
}

type simulatedAuth struct {
	customerID int64
	amount     decimal.Decimal
	cancelled  bool
}

// Simulated is an in-process gateway. It authorizes any amount up to Limit
// (a zero Limit authorizes everything) and remembers what it issued.
type Simulated struct {
	Limit  decimal.Decimal
	Logger zerolog.Logger

	mu            sync.Mutex
	auths         map[string]*simulatedAuth
	cancellations []Cancellation
}

// NewSimulated builds a simulated gateway.
func NewSimulated(limit decimal.Decimal, logger zerolog.Logger) *Simulated {
	return &Simulated{Limit: limit, Logger: logger, auths: make(map[string]*simulatedAuth)}
}

// Authorize implements Service.
func (s *Simulated) Authorize(_ context.Context, customerID int64, amount decimal.Decimal) (Authorization, error) {
	if amount.IsNegative() {
		return Authorization{}, fmt.Errorf("payment: negative amount %s", amount)
	}
	if s.Limit.IsPositive() && amount.GreaterThan(s.Limit) {
		s.Logger.Info().Int64("customer_id", customerID).Str("amount", amount.StringFixed(2)).Msg("payment_declined")
		return Authorization{Authorized: false}, nil
	}
	id := uuid.NewString()
	s.mu.Lock()
	if s.auths == nil {
		s.auths = make(map[string]*simulatedAuth)
	}
	s.auths[id] = &simulatedAuth{customerID: customerID, amount: amount}
	s.mu.Unlock()
	s.Logger.Info().Int64("customer_id", customerID).Str("transaction_id", id).Str("amount", amount.StringFixed(2)).Msg("payment_authorized")
	return Authorization{Authorized: true, TransactionID: id}, nil
}

// Cancel implements Service. Cancelling twice is accepted and recorded once.
func (s *Simulated) Cancel(_ context.Context, transactionID string, customerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	auth, ok := s.auths[transactionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTransaction, transactionID)
	}
	if auth.customerID != customerID {
		return fmt.Errorf("payment: transaction %s does not belong to customer %d", transactionID, customerID)
	}
	if auth.cancelled {
		return nil
	}
	auth.cancelled = true
	s.cancellations = append(s.cancellations, Cancellation{TransactionID: transactionID, CustomerID: customerID})
	s.Logger.Info().Int64("customer_id", customerID).Str("transaction_id", transactionID).Msg("payment_cancelled")
	return nil
}

// Cancellations returns the accepted cancellations in call order.
func (s *Simulated) Cancellations() []Cancellation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Cancellation(nil), s.cancellations...)
}
