package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-checkout/internal/customer"
)

// ErrNotFound is returned when a cart does not exist or belongs to another customer.
var ErrNotFound = errors.New("cart not found")

// Product is the catalog entry referenced by a line item.
type Product struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Weight int             `json:"weight"`
}

// Item is one line of a cart.
type Item struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Line is the (product, quantity) pair exchanged with the stock service.
type Line struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Cart is a customer's basket at checkout time.
type Cart struct {
	ID       int64             `json:"id"`
	Customer customer.Customer `json:"customer"`
	Items    []Item            `json:"items"`
}

// Empty reports whether the cart has no line items.
func (c Cart) Empty() bool {
	return len(c.Items) == 0
}

// Lines returns the stock lines for the cart in item order.
func (c Cart) Lines() []Line {
	lines := make([]Line, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, Line{ProductID: it.Product.ID, Quantity: it.Quantity})
	}
	return lines
}

// Store loads carts scoped to their owner.
type Store interface {
	GetForCustomer(ctx context.Context, cartID int64, owner customer.Customer) (Cart, error)
}
