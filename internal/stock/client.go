package stock

import (
	"context"
	"errors"
	"strings"

	"github.com/noah-isme/toko-checkout/internal/cart"
	"github.com/noah-isme/toko-checkout/internal/resilience"
)

// Client calls a remote inventory service over HTTP.
type Client struct {
	BaseURL string
	HTTP    *resilience.HTTPClient
}

type linesRequest struct {
	Lines []cart.Line `json:"lines"`
}

type availabilityResponse struct {
	Available bool `json:"available"`
}

type decrementResponse struct {
	Success bool `json:"success"`
}

// CheckAvailability implements Service via POST {base}/stock/availability.
func (c Client) CheckAvailability(ctx context.Context, lines []cart.Line) (bool, error) {
	if err := c.ready(); err != nil {
		return false, err
	}
	var out availabilityResponse
	if err := c.HTTP.PostJSON(ctx, c.url("/stock/availability"), linesRequest{Lines: lines}, &out); err != nil {
		return false, err
	}
	return out.Available, nil
}

// Decrement implements Service via POST {base}/stock/decrement. Only the
// availability read is retried; a replayed debit could apply twice.
func (c Client) Decrement(ctx context.Context, lines []cart.Line) (bool, error) {
	if err := c.ready(); err != nil {
		return false, err
	}
	var out decrementResponse
	if err := c.HTTP.PostJSONOnce(ctx, c.url("/stock/decrement"), linesRequest{Lines: lines}, &out); err != nil {
		return false, err
	}
	return out.Success, nil
}

func (c Client) ready() error {
	if c.HTTP == nil || strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("stock: client not configured")
	}
	return nil
}

func (c Client) url(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + path
}
