package pricing

import "github.com/shopspring/decimal"

// Scale is the number of decimal places of a final amount.
const Scale = 2

var (
	zero    = decimal.Zero
	hundred = decimal.NewFromInt(100)
)

// Round brings an amount to Scale places, rounding halves away from zero
// (half-up for the non-negative amounts produced here).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// percent returns p/100 as an exact decimal.
func percent(p int64) decimal.Decimal {
	return decimal.NewFromInt(p).Div(hundred)
}
