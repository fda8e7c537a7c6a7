// Package money converts between decimal money strings and the integer-cents
// representation used throughout the ledger. All monetary arithmetic happens
// on int64 cents; decimal strings exist only at the API boundary.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has more than 2 decimal places")
)

// ParseCents parses a decimal string like "100.50" into cents (10050).
// Rejects non-numeric input and amounts with more than 2 fractional digits.
func ParseCents(input string) (int64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	shifted := d.Shift(2)
	if !shifted.IsInteger() {
		return 0, ErrTooManyDecimals
	}
	return shifted.IntPart(), nil
}

// FormatCents renders cents as a fixed two-decimal string: 10050 -> "100.50".
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
