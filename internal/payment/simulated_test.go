package payment_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-checkout/internal/payment"
)

func TestSimulatedAuthorizeWithinLimit(t *testing.T) {
	gw := payment.NewSimulated(decimal.NewFromInt(1000), zerolog.Nop())
	ctx := context.Background()

	auth, err := gw.Authorize(ctx, 1, decimal.RequireFromString("999.99"))
	require.NoError(t, err)
	require.True(t, auth.Authorized)
	require.NotEmpty(t, auth.TransactionID)

	auth, err = gw.Authorize(ctx, 1, decimal.RequireFromString("1000.01"))
	require.NoError(t, err)
	require.False(t, auth.Authorized)
	require.Empty(t, auth.TransactionID)

	_, err = gw.Authorize(ctx, 1, decimal.NewFromInt(-1))
	require.Error(t, err)
}

func TestSimulatedZeroLimitAuthorizesEverything(t *testing.T) {
	gw := payment.NewSimulated(decimal.Zero, zerolog.Nop())
	auth, err := gw.Authorize(context.Background(), 1, decimal.NewFromInt(1_000_000))
	require.NoError(t, err)
	require.True(t, auth.Authorized)
}

func TestSimulatedCancel(t *testing.T) {
	gw := payment.NewSimulated(decimal.Zero, zerolog.Nop())
	ctx := context.Background()
	auth, err := gw.Authorize(ctx, 5, decimal.NewFromInt(10))
	require.NoError(t, err)

	require.Error(t, gw.Cancel(ctx, auth.TransactionID, 6))
	require.ErrorIs(t, gw.Cancel(ctx, "missing", 5), payment.ErrUnknownTransaction)

	require.NoError(t, gw.Cancel(ctx, auth.TransactionID, 5))
	require.NoError(t, gw.Cancel(ctx, auth.TransactionID, 5))
	require.Equal(t, []payment.Cancellation{{TransactionID: auth.TransactionID, CustomerID: 5}}, gw.Cancellations())
}
