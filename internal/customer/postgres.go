package customer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DBPool is the subset of *pgxpool.Pool used by PostgresStore.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore reads customers from the customers table.
type PostgresStore struct {
	pool DBPool
}

// NewPostgresStore wraps a pgx pool.
func NewPostgresStore(pool DBPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const getCustomerSQL = `SELECT id, name, tier FROM customers WHERE id = $1`

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, id int64) (Customer, error) {
	if s == nil || s.pool == nil {
		return Customer{}, errors.New("customer: store not configured")
	}
	var (
		c    Customer
		tier string
	)
	if err := s.pool.QueryRow(ctx, getCustomerSQL, id).Scan(&c.ID, &c.Name, &tier); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, ErrNotFound
		}
		return Customer{}, fmt.Errorf("customer: load %d: %w", id, err)
	}
	parsed, err := ParseTier(tier)
	if err != nil {
		return Customer{}, fmt.Errorf("customer: load %d: %w", id, err)
	}
	c.Tier = parsed
	return c, nil
}
