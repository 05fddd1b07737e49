package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// Parse converts a monetary text field into a decimal. Any value that fails
// to parse degrades to zero instead of erroring: vendor formatting variance
// must never abort an otherwise-valid document.
func Parse(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Zero
	}
	return d
}

// ParseOr converts text into a decimal, falling back to def when the text is
// empty or unparseable.
func ParseOr(s string, def decimal.Decimal) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return d
}

// FromFloat creates decimal from float with rounding to 2 places
func FromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// Percentage computes: amount * (percentage/100), rounded to 2 places
func Percentage(amount, percentage decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return amount.Mul(percentage).Div(hundred).Round(2)
}

// NetPayable computes: max(0, total - retention - detraction)
func NetPayable(total, retention, detraction decimal.Decimal) decimal.Decimal {
	net := total.Sub(retention).Sub(detraction)
	if net.IsNegative() {
		return Zero
	}
	return net
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// IsPositive returns true if decimal is strictly greater than zero
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(Zero)
}
