// Package stock talks to the inventory collaborator: it answers whether a set
// of cart lines can be fulfilled and debits them once payment is authorized.
package stock

import (
	"context"

	"github.com/noah-isme/toko-checkout/internal/cart"
)

// Service is the stock collaborator consumed by checkout.
type Service interface {
	// CheckAvailability is read-only.
	CheckAvailability(ctx context.Context, lines []cart.Line) (bool, error)
	// Decrement debits every line or none.
	Decrement(ctx context.Context, lines []cart.Line) (bool, error)
}

// demand folds repeated products into one quantity per product, keeping the
// order of first appearance. Non-positive quantities are dropped.
func demand(lines []cart.Line) ([]int64, map[int64]int) {
	ids := make([]int64, 0, len(lines))
	qty := make(map[int64]int, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if _, seen := qty[l.ProductID]; !seen {
			ids = append(ids, l.ProductID)
		}
		qty[l.ProductID] += l.Quantity
	}
	return ids, qty
}
