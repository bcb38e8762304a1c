package cart_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-checkout/internal/cart"
	"github.com/noah-isme/toko-checkout/internal/customer"
)

func TestLinesKeepItemOrder(t *testing.T) {
	c := cart.Cart{Items: []cart.Item{
		{Product: cart.Product{ID: 3}, Quantity: 2},
		{Product: cart.Product{ID: 1}, Quantity: 0},
		{Product: cart.Product{ID: 3}, Quantity: 1},
	}}
	require.Equal(t, []cart.Line{
		{ProductID: 3, Quantity: 2},
		{ProductID: 1, Quantity: 0},
		{ProductID: 3, Quantity: 1},
	}, c.Lines())
	require.False(t, c.Empty())
	require.True(t, cart.Cart{}.Empty())
	require.Empty(t, cart.Cart{}.Lines())
}

func TestMemoryStoreScopesByOwner(t *testing.T) {
	ctx := context.Background()
	owner := customer.Customer{ID: 10, Tier: customer.Silver}
	stranger := customer.Customer{ID: 11}

	store := cart.NewMemoryStore()
	store.Put(1, owner.ID, cart.Item{Product: cart.Product{ID: 5, Price: decimal.NewFromInt(100)}, Quantity: 2})

	got, err := store.GetForCustomer(ctx, 1, owner)
	require.NoError(t, err)
	require.Equal(t, owner, got.Customer)
	require.Len(t, got.Items, 1)

	_, err = store.GetForCustomer(ctx, 1, stranger)
	require.ErrorIs(t, err, cart.ErrNotFound)

	_, err = store.GetForCustomer(ctx, 2, owner)
	require.ErrorIs(t, err, cart.ErrNotFound)
}

var (
	selectCart  = regexp.QuoteMeta(`SELECT id FROM carts WHERE id = $1 AND customer_id = $2`)
	selectItems = regexp.QuoteMeta(`SELECT p.id, p.name, p.price::text, p.weight, i.quantity`)
)

func TestPostgresStoreLoadsItems(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	owner := customer.Customer{ID: 4, Tier: customer.Gold}
	mock.ExpectQuery(selectCart).
		WithArgs(int64(20), int64(4)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(20)))
	mock.ExpectQuery(selectItems).
		WithArgs(int64(20)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "price", "weight", "quantity"}).
			AddRow(int64(1), "Kopi", "800.00", 5, 1).
			AddRow(int64(2), "Teh", "400.50", 5, 3))

	got, err := cart.NewPostgresStore(mock).GetForCustomer(context.Background(), 20, owner)
	require.NoError(t, err)
	require.Equal(t, int64(20), got.ID)
	require.Equal(t, owner, got.Customer)
	require.Len(t, got.Items, 2)
	require.True(t, got.Items[1].Product.Price.Equal(decimal.RequireFromString("400.5")))
	require.Equal(t, 3, got.Items[1].Quantity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreMismatchedOwner(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	mock.ExpectQuery(selectCart).
		WithArgs(int64(20), int64(99)).
		WillReturnError(pgx.ErrNoRows)

	_, err = cart.NewPostgresStore(mock).GetForCustomer(context.Background(), 20, customer.Customer{ID: 99})
	require.ErrorIs(t, err, cart.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreRejectsBadPrice(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	mock.ExpectQuery(selectCart).
		WithArgs(int64(1), int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(selectItems).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "price", "weight", "quantity"}).
			AddRow(int64(1), "Kopi", "NaN?", 1, 1))

	_, err = cart.NewPostgresStore(mock).GetForCustomer(context.Background(), 1, customer.Customer{ID: 1})
	require.Error(t, err)
}
