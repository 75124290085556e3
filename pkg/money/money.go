package money

import "github.com/shopspring/decimal"

// Zero is the canonical zero amount.
var Zero = decimal.Zero

// LineTotal returns price multiplied by quantity, unrounded.
// Rounding per line would accumulate drift across a cart; callers round once
// after summation via Round2.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Sum adds the given amounts without rounding.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total
}

// Round2 rounds to two fractional digits, half away from zero.
func Round2(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// FromString parses a decimal amount, rejecting malformed input.
func FromString(value string) (decimal.Decimal, error) {
	return decimal.NewFromString(value)
}

// MustFromString parses a decimal amount known to be well formed.
func MustFromString(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}
