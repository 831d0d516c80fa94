package money_test

import (
	"testing"

	"github.com/contabank/contabank/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"250.50", "250.5"},
		{"250,50", "250.5"},
		{"1.234,56", "1234.56"},
		{"1.234", "1234"},
		{"1.234.567", "1234567"},
		{"0.50", "0.5"},
		{"1000", "1000"},
		{" 42 ", "42"},
		{"0", "0"},
	}
	for _, tt := range tests {
		got, err := money.ParseAmount(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got.String(), "input %q", tt.in)
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"", "   ", "abc", "12,34,56", "1.2.3"} {
		_, err := money.ParseAmount(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseAmount_TooManyDigits(t *testing.T) {
	t.Parallel()
	_, err := money.ParseAmount("10,123")
	assert.ErrorIs(t, err, money.ErrTooManyDigits)

	_, err = money.ParseAmount("0.505")
	assert.ErrorIs(t, err, money.ErrTooManyDigits)
}

func TestParsePositiveAmount(t *testing.T) {
	t.Parallel()
	_, err := money.ParsePositiveAmount("0")
	assert.ErrorIs(t, err, money.ErrNotPositive)

	_, err = money.ParsePositiveAmount("-5")
	assert.ErrorIs(t, err, money.ErrNotPositive)

	d, err := money.ParsePositiveAmount("0,01")
	require.NoError(t, err)
	assert.Equal(t, "0.01", d.String())
}

func TestFormatBRL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"0", "R$ 0,00"},
		{"250.5", "R$ 250,50"},
		{"1234.56", "R$ 1.234,56"},
		{"1000000", "R$ 1.000.000,00"},
		{"-42.1", "-R$ 42,10"},
	}
	for _, tt := range tests {
		d := decimal.RequireFromString(tt.in)
		assert.Equal(t, tt.want, money.FormatBRL(d))
	}
}

// Formatting then re-parsing a formatted value must be stable for any
// representable positive amount with two fraction digits.
func TestFormatParseRoundTrip(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"0.01", "1", "250.5", "1234.56", "999999.99", "5000"} {
		d := decimal.RequireFromString(in)
		formatted := money.FormatBRL(d)
		parsed, err := money.ParseAmount(formatted[len("R$ "):])
		require.NoError(t, err, "formatted %q", formatted)
		assert.Equal(t, formatted, money.FormatBRL(parsed))
	}
}
