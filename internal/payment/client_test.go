package payment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-checkout/internal/payment"
	"github.com/noah-isme/toko-checkout/internal/resilience"
)

func TestClientAuthorizeAndCancel(t *testing.T) {
	var cancelled string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, float64(42), body["customerId"])
		switch r.URL.Path {
		case "/payments/authorize":
			require.Equal(t, "552.00", body["amount"])
			_, _ = w.Write([]byte(`{"authorized":true,"transactionId":"tx-1"}`))
		case "/payments/tx-1/cancel":
			cancelled = "tx-1"
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	client := payment.Client{BaseURL: srv.URL, HTTP: &resilience.HTTPClient{Client: srv.Client(), Target: "payment"}}
	ctx := context.Background()

	auth, err := client.Authorize(ctx, 42, decimal.NewFromInt(552))
	require.NoError(t, err)
	require.Equal(t, payment.Authorization{Authorized: true, TransactionID: "tx-1"}, auth)

	require.NoError(t, client.Cancel(ctx, "tx-1", 42))
	require.Equal(t, "tx-1", cancelled)
}

func TestClientDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"authorized":false}`))
	}))
	t.Cleanup(srv.Close)

	client := payment.Client{BaseURL: srv.URL, HTTP: &resilience.HTTPClient{Client: srv.Client()}}
	auth, err := client.Authorize(context.Background(), 1, decimal.NewFromInt(1))
	require.NoError(t, err)
	require.False(t, auth.Authorized)
}

func TestClientCancelFailureSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	t.Cleanup(srv.Close)

	client := payment.Client{BaseURL: srv.URL, HTTP: &resilience.HTTPClient{Client: srv.Client()}}
	err := client.Cancel(context.Background(), "tx-9", 1)
	var statusErr *resilience.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusGone, statusErr.Status)
}

func TestClientWritesAreSentOnce(t *testing.T) {
	var authorizeCalls, cancelCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/payments/authorize":
			authorizeCalls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		case "/payments/tx-7/cancel":
			cancelCalls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	client := payment.Client{BaseURL: srv.URL, HTTP: &resilience.HTTPClient{
		Client:      srv.Client(),
		Breaker:     resilience.NewBreaker(10, 1, time.Second),
		BaseBackoff: time.Millisecond,
		MaxAttempts: 3,
		Target:      "payment",
	}}
	ctx := context.Background()

	_, err := client.Authorize(ctx, 1, decimal.NewFromInt(10))
	require.Error(t, err)
	require.Equal(t, int32(1), authorizeCalls.Load())

	err = client.Cancel(ctx, "tx-7", 1)
	var statusErr *resilience.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusInternalServerError, statusErr.Status)
	require.Equal(t, int32(1), cancelCalls.Load())
}
