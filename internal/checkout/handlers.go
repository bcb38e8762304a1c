package checkout

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/lock"
	"github.com/noah-isme/toko-checkout/internal/pricing"
)

// Checkouter is the part of Service the HTTP adapter needs.
type Checkouter interface {
	Checkout(ctx context.Context, cartID, customerID int64) (Result, error)
	Quote(ctx context.Context, cartID, customerID int64) (pricing.Summary, error)
}

// CartLocker serializes work on one key.
type CartLocker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// Handler exposes checkout over HTTP. The customer comes from the request
// context (see common.CustomerIdentity).
type Handler struct {
	Svc      Checkouter
	Locker   CartLocker
	LockTTL  time.Duration
	LockWait time.Duration
	Validate *validator.Validate
}

type checkoutRequest struct {
	CartID     int64 `validate:"required,gt=0"`
	CustomerID int64 `validate:"required,gt=0"`
}

type checkoutResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId,omitempty"`
	Message       string `json:"message"`
	State         State  `json:"state"`
	Total         string `json:"total"`
}

type quoteResponse struct {
	Subtotal    string `json:"subtotal"`
	Discount    string `json:"discount"`
	Freight     string `json:"freight"`
	TotalWeight int    `json:"totalWeight"`
	Total       string `json:"total"`
}

// Checkout handles POST /carts/{cartID}/checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	req, ok := h.parse(w, r)
	if !ok {
		return
	}

	var (
		res Result
		err error
	)
	run := func(context.Context) error {
		res, err = h.Svc.Checkout(r.Context(), req.CartID, req.CustomerID)
		return nil
	}
	if h.Locker == nil {
		_ = run(r.Context())
	} else {
		waitCtx, cancel := context.WithTimeout(r.Context(), h.lockWait())
		lockErr := h.Locker.WithLock(waitCtx, lock.CartKey(req.CartID), h.LockTTL, run)
		cancel()
		if lockErr != nil {
			h.writeLockError(w, r, lockErr)
			return
		}
	}

	if err != nil {
		h.writeError(w, err, toResponse(res))
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": toResponse(res)})
}

// Quote handles GET /carts/{cartID}/quote.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	req, ok := h.parse(w, r)
	if !ok {
		return
	}
	sum, err := h.Svc.Quote(r.Context(), req.CartID, req.CustomerID)
	if err != nil {
		h.writeError(w, err, nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": quoteResponse{
		Subtotal:    sum.Subtotal.StringFixed(pricing.Scale),
		Discount:    sum.Discount.StringFixed(pricing.Scale),
		Freight:     sum.Freight.StringFixed(pricing.Scale),
		TotalWeight: sum.TotalWeight,
		Total:       sum.Total.StringFixed(pricing.Scale),
	}})
}

func (h *Handler) parse(w http.ResponseWriter, r *http.Request) (checkoutRequest, bool) {
	customerID, ok := common.CustomerID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", common.ErrMissingCustomer.Error(), nil)
		return checkoutRequest{}, false
	}
	cartID, err := common.ParseID(chi.URLParam(r, "cartID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid cart id", nil)
		return checkoutRequest{}, false
	}
	req := checkoutRequest{CartID: cartID, CustomerID: customerID}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid checkout request", err.Error())
			return checkoutRequest{}, false
		}
	}
	return req, true
}

func (h *Handler) writeLockError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.DeadlineExceeded) && r.Context().Err() == nil {
		common.JSONError(w, http.StatusConflict, "CHECKOUT_IN_PROGRESS", "another checkout of this cart is running", nil)
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("checkout_lock_failed")
	common.JSONError(w, http.StatusServiceUnavailable, "LOCK_UNAVAILABLE", "checkout temporarily unavailable", nil)
}

func (h *Handler) writeError(w http.ResponseWriter, err error, details any) {
	common.WriteAppError(w, toAppError(err).WithDetails(details))
}

func toAppError(err error) *common.AppError {
	if appErr, ok := common.AsAppError(err); ok {
		return appErr
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return common.NewAppError("NOT_FOUND", msgNotFound, http.StatusNotFound, err)
	case errors.Is(err, ErrStockDebitFailed):
		return common.NewAppError("STOCK_DEBIT_FAILED", msgDebitRefunded, http.StatusConflict, err)
	case errors.Is(err, ErrStockUnavailable):
		return common.NewAppError("STOCK_UNAVAILABLE", msgStock, http.StatusConflict, err)
	case errors.Is(err, ErrPaymentDeclined):
		return common.NewAppError("PAYMENT_DECLINED", msgPayment, http.StatusPaymentRequired, err)
	default:
		return common.NewAppError("INTERNAL", "internal error", http.StatusInternalServerError, err)
	}
}

func toResponse(res Result) checkoutResponse {
	return checkoutResponse{
		Success:       res.Success,
		TransactionID: res.TransactionID,
		Message:       res.Message,
		State:         res.State,
		Total:         res.Total.StringFixed(pricing.Scale),
	}
}

func (h *Handler) lockWait() time.Duration {
	if h.LockWait <= 0 {
		return 2 * time.Second
	}
	return h.LockWait
}
