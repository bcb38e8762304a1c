package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-checkout/internal/customer"
)

// DBPool matches the methods from *pgxpool.Pool that PostgresStore uses.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore reads carts and their items.
type PostgresStore struct {
	pool DBPool
}

// NewPostgresStore wraps a pgx pool.
func NewPostgresStore(pool DBPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const (
	getCartSQL = `SELECT id FROM carts WHERE id = $1 AND customer_id = $2`

	// price is read as text so the exact numeric value reaches decimal parsing untouched.
	listCartItemsSQL = `SELECT p.id, p.name, p.price::text, p.weight, i.quantity
FROM cart_items i
JOIN products p ON p.id = i.product_id
WHERE i.cart_id = $1
ORDER BY i.id`
)

// GetForCustomer implements Store. A cart owned by someone else is reported as
// ErrNotFound so callers cannot probe for other customers' carts.
func (s *PostgresStore) GetForCustomer(ctx context.Context, cartID int64, owner customer.Customer) (Cart, error) {
	if s == nil || s.pool == nil {
		return Cart{}, errors.New("cart: store not configured")
	}
	var id int64
	if err := s.pool.QueryRow(ctx, getCartSQL, cartID, owner.ID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, fmt.Errorf("cart: load %d: %w", cartID, err)
	}

	rows, err := s.pool.Query(ctx, listCartItemsSQL, cartID)
	if err != nil {
		return Cart{}, fmt.Errorf("cart: list items of %d: %w", cartID, err)
	}
	defer rows.Close()

	c := Cart{ID: id, Customer: owner}
	for rows.Next() {
		var (
			it    Item
			price string
		)
		if err := rows.Scan(&it.Product.ID, &it.Product.Name, &price, &it.Product.Weight, &it.Quantity); err != nil {
			return Cart{}, fmt.Errorf("cart: scan item: %w", err)
		}
		it.Product.Price, err = decimal.NewFromString(price)
		if err != nil {
			return Cart{}, fmt.Errorf("cart: product %d price %q: %w", it.Product.ID, price, err)
		}
		c.Items = append(c.Items, it)
	}
	if err := rows.Err(); err != nil {
		return Cart{}, fmt.Errorf("cart: list items of %d: %w", cartID, err)
	}
	return c, nil
}
