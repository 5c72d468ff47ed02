package utils

import (
	"testing"

	"github.com/SscSPs/budget_engine/internal/apperrors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		code   string
		want   string
	}{
		{"grouping and decimals", "1234.5", "USD", "1 234,50 $"},
		{"rounds to cents", "0.129", "USD", "0,13 $"},
		{"millions", "1234567.891", "USD", "1 234 567,89 $"},
		{"negative", "-42", "USD", "-42,00 $"},
		{"lower case code", "10", "usd", "10,00 $"},
		{"unknown code falls back to code", "12", "XYZ", "12,00 XYZ"},
		{"negative rounding to zero", "-0.001", "USD", "0,00 $"},
		{"beyond int64 minor units", "100000000000000000.5", "USD", "100 000 000 000 000 000,50 $"},
		{"very large negative", "-98765432109876543210.555", "EUR", "-98 765 432 109 876 543 210,56 €"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(decimal.RequireFromString(tt.amount), tt.code))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 234,56", "1234.56"},
		{"1234.56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"1,234,567", "1234567"},
		{"12,5", "12.5"},
		{" 42 ", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "12,3x"} {
		_, err := ParseAmount(input)
		assert.ErrorIs(t, err, apperrors.ErrValidation, input)
	}
}
