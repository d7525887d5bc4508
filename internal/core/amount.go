package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a textual amount into an exact decimal.
//
// Surrounding whitespace is ignored and a single comma is accepted as the
// decimal separator ("12,50"). Thousands separators, currency symbols and
// non-finite values are rejected with ErrInvalidAmount. Negative and zero
// amounts are valid: refunds and corrections aggregate like any other row.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if rest, ok := strings.CutPrefix(s, "+"); ok {
		if strings.HasPrefix(rest, "-") || strings.HasPrefix(rest, "+") {
			return decimal.Zero, ErrInvalidAmount
		}
		s = rest
	}
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") || strings.Count(s, ",") > 1 {
			return decimal.Zero, ErrInvalidAmount
		}
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
