// utils/money.go - Monetary amounts in cents
package utils

import (
	"fmt"
	"math"
)

// Cents is a monetary amount in the smallest unit. Aggregations sum
// cents and only format at presentation time, so float error never
// compounds across many small additions.
type Cents int64

// ToCents converts a decimal amount to cents, rounding half away from zero.
func ToCents(amount float64) Cents {
	return Cents(math.Round(amount * 100))
}

// CostCents computes days x dailyRate in cents.
func CostCents(days, dailyRate float64) Cents {
	return Cents(math.Round(days * dailyRate * 100))
}

// Float converts back to a decimal amount for JSON payloads.
func (c Cents) Float() float64 {
	return float64(c) / 100
}

// Format renders the amount with two decimals and thousands separators,
// e.g. 1234567 -> "12 345.67".
func (c Cents) Format() string {
	negative := c < 0
	if negative {
		c = -c
	}
	whole := int64(c) / 100
	frac := int64(c) % 100

	digits := fmt.Sprintf("%d", whole)
	var grouped []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped = append(grouped, ' ')
		}
		grouped = append(grouped, d)
	}
	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%s%s.%02d", sign, grouped, frac)
}
