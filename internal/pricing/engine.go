package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-checkout/internal/cart"
	"github.com/noah-isme/toko-checkout/internal/customer"
)

// Summary aggregates computed pricing components. Only Total is rounded.
type Summary struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	Freight     decimal.Decimal `json:"freight"`
	TotalWeight int             `json:"totalWeight"`
	Total       decimal.Decimal `json:"total"`
}

type discountRule struct {
	min  decimal.Decimal
	rate decimal.Decimal
}

// Ordered from the highest threshold down; thresholds are inclusive.
var discountRules = []discountRule{
	{min: decimal.NewFromInt(1000), rate: percent(20)},
	{min: decimal.NewFromInt(500), rate: percent(10)},
}

type freightBracket struct {
	maxWeight int // inclusive; 0 marks the open-ended last bracket
	perUnit   decimal.Decimal
}

var freightBrackets = []freightBracket{
	{maxWeight: 5, perUnit: zero},
	{maxWeight: 10, perUnit: decimal.NewFromInt(2)},
	{maxWeight: 50, perUnit: decimal.NewFromInt(4)},
	{maxWeight: 0, perUnit: decimal.NewFromInt(7)},
}

// Subtotal sums price × quantity over items without rounding.
func Subtotal(items []cart.Item) decimal.Decimal {
	subtotal := zero
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return subtotal
}

// Discount returns the tiered discount for a subtotal: 20% from 1000,
// 10% from 500, nothing below.
func Discount(subtotal decimal.Decimal) decimal.Decimal {
	for _, rule := range discountRules {
		if subtotal.GreaterThanOrEqual(rule.min) {
			return subtotal.Mul(rule.rate)
		}
	}
	return zero
}

// TotalWeight sums weight × quantity over items.
func TotalWeight(items []cart.Item) int {
	total := 0
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		total += it.Product.Weight * it.Quantity
	}
	return total
}

// BaseFreight prices a weight by bracket before any tier benefit.
func BaseFreight(totalWeight int) decimal.Decimal {
	w := decimal.NewFromInt(int64(totalWeight))
	for _, b := range freightBrackets {
		if b.maxWeight == 0 || totalWeight <= b.maxWeight {
			return w.Mul(b.perUnit)
		}
	}
	return zero
}

// Freight prices a weight by bracket and then applies the tier benefit.
// The tier never influences which bracket is used.
func Freight(totalWeight int, tier customer.Tier) decimal.Decimal {
	base := BaseFreight(totalWeight)
	switch tier {
	case customer.Gold:
		return zero
	case customer.Silver:
		return base.Mul(percent(50))
	default:
		// Bronze. Stored customers cannot carry other values (see ParseTier).
		return base
	}
}

// Quote computes the full breakdown for a cart.
func Quote(c cart.Cart) Summary {
	if c.Empty() {
		return Summary{Subtotal: zero, Discount: zero, Freight: zero, Total: Round(zero)}
	}
	subtotal := Subtotal(c.Items)
	discount := Discount(subtotal)
	weight := TotalWeight(c.Items)
	freight := Freight(weight, c.Customer.Tier)
	return Summary{
		Subtotal:    subtotal,
		Discount:    discount,
		Freight:     freight,
		TotalWeight: weight,
		Total:       Round(subtotal.Sub(discount).Add(freight)),
	}
}

// Total returns the amount due for a cart, rounded once to two places.
func Total(c cart.Cart) decimal.Decimal {
	return Quote(c).Total
}
