package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/toko-checkout/internal/cart"
	"github.com/noah-isme/toko-checkout/internal/customer"
	"github.com/noah-isme/toko-checkout/internal/obs"
	"github.com/noah-isme/toko-checkout/internal/payment"
	"github.com/noah-isme/toko-checkout/internal/pricing"
	"github.com/noah-isme/toko-checkout/internal/stock"
)

// Deps are the collaborators of a Service.
type Deps struct {
	Customers customer.Store
	Carts     cart.Store
	Stock     stock.Service
	Payments  payment.Service
	Logger    zerolog.Logger
	Tracer    trace.Tracer
}

// Service sequences a checkout: availability check, pricing, payment
// authorization, stock debit, and payment cancellation when the debit fails.
// It neither retries nor locks; callers serialize checkouts per cart.
type Service struct {
	customers customer.Store
	carts     cart.Store
	stock     stock.Service
	payments  payment.Service
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewService validates deps and builds a Service.
func NewService(d Deps) (*Service, error) {
	switch {
	case d.Customers == nil:
		return nil, errors.New("checkout: customer store is required")
	case d.Carts == nil:
		return nil, errors.New("checkout: cart store is required")
	case d.Stock == nil:
		return nil, errors.New("checkout: stock service is required")
	case d.Payments == nil:
		return nil, errors.New("checkout: payment service is required")
	}
	tracer := d.Tracer
	if tracer == nil {
		tracer = otel.Tracer("checkout")
	}
	return &Service{
		customers: d.Customers,
		carts:     d.Carts,
		stock:     d.Stock,
		payments:  d.Payments,
		logger:    d.Logger,
		tracer:    tracer,
	}, nil
}

// Checkout runs one checkout attempt for cartID owned by customerID. Every
// failure comes back with a non-nil error matching one of the package
// sentinels and a Result describing where the pipeline stopped.
func (s *Service) Checkout(ctx context.Context, cartID, customerID int64) (res Result, err error) {
	ctx, span := s.tracer.Start(ctx, "checkout.Checkout", trace.WithAttributes(
		attribute.Int64("cart.id", cartID),
		attribute.Int64("customer.id", customerID),
	))
	defer func() {
		s.finish(ctx, span, cartID, customerID, res, err)
		span.End()
	}()

	c, err := s.load(ctx, cartID, customerID)
	if err != nil {
		return Result{State: StateStart, Message: msgNotFound}, err
	}
	lines := c.Lines()

	available, err := timed(ctx, "check_availability", func() (bool, error) {
		return s.stock.CheckAvailability(ctx, lines)
	})
	if err != nil {
		return Result{State: StateRejectedStock, Message: msgStock}, fmt.Errorf("%w: %w", ErrStockUnavailable, err)
	}
	if !available {
		return Result{State: StateRejectedStock, Message: msgStock}, ErrStockUnavailable
	}
	span.AddEvent(string(StateStockChecked))

	quote := pricing.Quote(c)
	span.AddEvent(string(StatePriced), trace.WithAttributes(attribute.String("checkout.total", quote.Total.StringFixed(pricing.Scale))))
	if obs.CheckoutAmount != nil {
		obs.CheckoutAmount.Observe(quote.Total.InexactFloat64())
	}

	auth, err := timed(ctx, "authorize", func() (payment.Authorization, error) {
		return s.payments.Authorize(ctx, customerID, quote.Total)
	})
	if err != nil {
		return Result{State: StateRejectedPayment, Message: msgPayment, Total: quote.Total}, fmt.Errorf("%w: %w", ErrPaymentDeclined, err)
	}
	if !auth.Authorized {
		return Result{State: StateRejectedPayment, Message: msgPayment, Total: quote.Total}, ErrPaymentDeclined
	}
	span.AddEvent(string(StateAuthorized))

	debited, err := timed(ctx, "decrement", func() (bool, error) {
		return s.stock.Decrement(ctx, lines)
	})
	if err != nil || !debited {
		res = Result{
			State:         StateRejectedDebitWithRefund,
			Message:       msgDebitRefunded,
			TransactionID: auth.TransactionID,
			Total:         quote.Total,
		}
		return res, s.compensate(ctx, auth.TransactionID, customerID, err)
	}
	span.AddEvent(string(StateStockDebited))

	return Result{
		Success:       true,
		TransactionID: auth.TransactionID,
		Message:       msgDone,
		State:         StateDone,
		Total:         quote.Total,
	}, nil
}

// Quote prices a cart after the same ownership checks as Checkout, without
// calling any collaborator.
func (s *Service) Quote(ctx context.Context, cartID, customerID int64) (pricing.Summary, error) {
	c, err := s.load(ctx, cartID, customerID)
	if err != nil {
		return pricing.Summary{}, err
	}
	return pricing.Quote(c), nil
}

func (s *Service) load(ctx context.Context, cartID, customerID int64) (cart.Cart, error) {
	cust, err := s.customers.Get(ctx, customerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return cart.Cart{}, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return cart.Cart{}, fmt.Errorf("checkout: load customer %d: %w", customerID, err)
	}
	c, err := s.carts.GetForCustomer(ctx, cartID, cust)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return cart.Cart{}, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return cart.Cart{}, fmt.Errorf("checkout: load cart %d: %w", cartID, err)
	}
	return c, nil
}

// compensate cancels the authorization once. The caller's cancellation does
// not stop it, and its failure is returned, never retried.
func (s *Service) compensate(ctx context.Context, transactionID string, customerID int64, debitErr error) error {
	failure := ErrStockDebitFailed
	if debitErr != nil {
		failure = fmt.Errorf("%w: %w", ErrStockDebitFailed, debitErr)
	}
	cancelErr := s.payments.Cancel(context.WithoutCancel(ctx), transactionID, customerID)
	result := "ok"
	if cancelErr != nil {
		result = "error"
	}
	if obs.CheckoutCompensationTotal != nil {
		obs.CheckoutCompensationTotal.WithLabelValues(result).Inc()
	}
	if cancelErr != nil {
		logger := s.loggerFor(ctx)
		logger.Error().Err(cancelErr).
			Str("transaction_id", transactionID).
			Int64("customer_id", customerID).
			Msg("checkout_compensation_failed")
		return errors.Join(failure, fmt.Errorf("%w: transaction %s: %w", ErrCompensationFailed, transactionID, cancelErr))
	}
	return failure
}

func (s *Service) finish(ctx context.Context, span trace.Span, cartID, customerID int64, res Result, err error) {
	outcome := outcomeLabel(res, err)
	span.SetAttributes(attribute.String("checkout.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	if obs.CheckoutOutcomeTotal != nil {
		obs.CheckoutOutcomeTotal.WithLabelValues(outcome).Inc()
	}

	logger := s.loggerFor(ctx)
	evt := logger.Info()
	if err != nil {
		evt = logger.Warn().Err(err)
	}
	evt = evt.Int64("cart_id", cartID).
		Int64("customer_id", customerID).
		Str("state", string(res.State)).
		Str("outcome", outcome)
	if res.State != StateStart {
		evt = evt.Str("total", res.Total.StringFixed(pricing.Scale))
	}
	if res.TransactionID != "" {
		evt = evt.Str("transaction_id", res.TransactionID)
	}
	evt.Msg("checkout_finished")
}

func (s *Service) loggerFor(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return obs.WithTrace(ctx, *l)
	}
	return obs.WithTrace(ctx, s.logger)
}

func outcomeLabel(res Result, err error) string {
	if res.State != StateStart {
		return string(res.State)
	}
	if errors.Is(err, ErrNotFound) {
		return "NOT_FOUND"
	}
	return "ERROR"
}

func timed[T any](ctx context.Context, step string, call func() (T, error)) (T, error) {
	start := time.Now()
	out, err := call()
	if obs.CheckoutStepDuration != nil {
		obs.CheckoutStepDuration.WithLabelValues(step).Observe(obs.DurationMillis(time.Since(start)))
	}
	if err != nil {
		trace.SpanFromContext(ctx).AddEvent(step+"_failed", trace.WithAttributes(attribute.String("error", err.Error())))
	}
	return out, err
}
