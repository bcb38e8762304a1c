package payment

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-checkout/internal/resilience"
)

// Client calls a remote payment gateway over HTTP.
type Client struct {
	BaseURL string
	HTTP    *resilience.HTTPClient
}

type authorizeRequest struct {
	CustomerID int64  `json:"customerId"`
	Amount     string `json:"amount"`
}

type cancelRequest struct {
	CustomerID int64 `json:"customerId"`
}

// Authorize implements Service via POST {base}/payments/authorize. It is
// sent once: a replay could hold funds under a second transaction id.
func (c Client) Authorize(ctx context.Context, customerID int64, amount decimal.Decimal) (Authorization, error) {
	if err := c.ready(); err != nil {
		return Authorization{}, err
	}
	var out Authorization
	in := authorizeRequest{CustomerID: customerID, Amount: amount.StringFixed(2)}
	if err := c.HTTP.PostJSONOnce(ctx, c.url("/payments/authorize"), in, &out); err != nil {
		return Authorization{}, err
	}
	if out.Authorized && out.TransactionID == "" {
		return Authorization{}, errors.New("payment: gateway authorized without a transaction id")
	}
	return out, nil
}

// Cancel implements Service via POST {base}/payments/{id}/cancel. It is
// sent once and its failure is returned as is.
func (c Client) Cancel(ctx context.Context, transactionID string, customerID int64) error {
	if err := c.ready(); err != nil {
		return err
	}
	path := "/payments/" + url.PathEscape(transactionID) + "/cancel"
	return c.HTTP.PostJSONOnce(ctx, c.url(path), cancelRequest{CustomerID: customerID}, nil)
}

func (c Client) ready() error {
	if c.HTTP == nil || strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("payment: client not configured")
	}
	return nil
}

func (c Client) url(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + path
}
