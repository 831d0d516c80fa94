// Package money provides amount parsing and Brazilian-real formatting on top
// of shopspring/decimal. Amounts are kept as exact decimals end to end; floats
// only appear at the API boundary.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Errors returned by ParseAmount.
var (
	ErrEmptyAmount   = errors.New("amount is required")
	ErrInvalidAmount = errors.New("amount is not a valid number")
	ErrNotPositive   = errors.New("amount must be greater than zero")
	ErrTooManyDigits = errors.New("amount has more than two decimal places")
)

// ParseAmount parses a user-entered amount. Both "1234.56" and the pt-BR form
// "1.234,56" are accepted; at most two fraction digits are allowed. Without a
// comma, dots are read as thousand separators when every following group has
// exactly three digits ("1.234" is 1234), otherwise as the decimal point.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	norm := normalize(s)
	d, err := decimal.NewFromString(norm)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.Exponent() < -2 {
		return decimal.Zero, ErrTooManyDigits
	}
	return d, nil
}

// ParsePositiveAmount is ParseAmount plus the transfer guard: the amount must
// be strictly greater than zero.
func ParsePositiveAmount(s string) (decimal.Decimal, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrNotPositive
	}
	return d, nil
}

// normalize rewrites pt-BR decimal notation to the canonical dot form.
// A comma is treated as the decimal separator whenever present; dots before a
// comma are thousand separators. Without a comma, dots are grouping
// separators only when every group after the first has exactly three digits.
func normalize(s string) string {
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	}
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return s
	}
	// A grouped integer starts with one to three digits, no leading zero.
	head := strings.TrimPrefix(parts[0], "-")
	if len(head) == 0 || len(head) > 3 || head[0] == '0' {
		return s
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return s
		}
	}
	return strings.Join(parts, "")
}

// FormatBRL renders an amount the way the product shows it: "R$ 1.234,56".
func FormatBRL(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := "R$ " + b.String() + "," + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
