package money

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)

	// Tolerance is the largest difference still treated as settled
	Tolerance = decimal.NewFromFloat(0.01)
)

// Round2 rounds half away from zero to two decimal places
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent returns round2(amount × percent / 100)
func Percent(amount, percent decimal.Decimal) decimal.Decimal {
	return Round2(amount.Mul(percent).Div(hundred))
}

// FloorZero clamps negative values to zero
func FloorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Settled reports whether a remaining amount is within tolerance of zero
func Settled(remaining decimal.Decimal) bool {
	return remaining.LessThanOrEqual(Tolerance)
}

// Equal reports whether a and b differ by no more than Tolerance
func Equal(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// Sum adds all values
func Sum(values ...decimal.Decimal) decimal.Decimal {
	return lo.Reduce(values, func(total, v decimal.Decimal, _ int) decimal.Decimal {
		return total.Add(v)
	}, decimal.Zero)
}
