package customer_test

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-checkout/internal/customer"
)

func TestParseTier(t *testing.T) {
	cases := map[string]customer.Tier{
		"BRONZE": customer.Bronze,
		"silver": customer.Silver,
		" Gold ": customer.Gold,
		"":       customer.Bronze,
	}
	for in, want := range cases {
		got, err := customer.ParseTier(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := customer.ParseTier("PLATINUM")
	require.Error(t, err)
}

func TestTierJSONRoundTrip(t *testing.T) {
	raw, err := json.Marshal(customer.Customer{ID: 1, Name: "Ana", Tier: customer.Silver})
	require.NoError(t, err)
	require.JSONEq(t, `{"id":1,"name":"Ana","tier":"SILVER"}`, string(raw))

	var decoded customer.Customer
	require.NoError(t, json.Unmarshal([]byte(`{"id":2,"tier":"GOLD"}`), &decoded))
	require.Equal(t, customer.Gold, decoded.Tier)

	require.Error(t, json.Unmarshal([]byte(`{"id":3,"tier":"IRON"}`), &decoded))
}

func TestMemoryStore(t *testing.T) {
	store := customer.NewMemoryStore(customer.Customer{ID: 1, Tier: customer.Gold})
	ctx := context.Background()

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, customer.Gold, got.Tier)

	_, err = store.Get(ctx, 2)
	require.ErrorIs(t, err, customer.ErrNotFound)

	store.Put(customer.Customer{ID: 2, Tier: customer.Silver})
	got, err = store.Get(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, customer.Silver, got.Tier)
}

const selectCustomer = `SELECT id, name, tier FROM customers WHERE id = $1`

func TestPostgresStoreGet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	mock.ExpectQuery(regexp.QuoteMeta(selectCustomer)).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "tier"}).AddRow(int64(7), "Budi", "SILVER"))

	store := customer.NewPostgresStore(mock)
	got, err := store.Get(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, customer.Customer{ID: 7, Name: "Budi", Tier: customer.Silver}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	mock.ExpectQuery(regexp.QuoteMeta(selectCustomer)).
		WithArgs(int64(9)).
		WillReturnError(pgx.ErrNoRows)

	_, err = customer.NewPostgresStore(mock).Get(context.Background(), 9)
	require.ErrorIs(t, err, customer.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreWrapsDriverErrors(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	boom := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta(selectCustomer)).
		WithArgs(int64(3)).
		WillReturnError(boom)

	_, err = customer.NewPostgresStore(mock).Get(context.Background(), 3)
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, customer.ErrNotFound)
}
