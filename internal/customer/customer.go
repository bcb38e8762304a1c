package customer

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no customer exists for the requested id.
var ErrNotFound = errors.New("customer not found")

// Customer is the buyer a cart belongs to.
type Customer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Tier Tier   `json:"tier"`
}

// Store loads customers.
type Store interface {
	Get(ctx context.Context, id int64) (Customer, error)
}
