package utils

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/SscSPs/budget_engine/internal/apperrors"
	"github.com/shopspring/decimal"
)

// FormatAmount renders amount with two decimals, space grouping, a comma decimal separator
// and the currency symbol after the number. Amounts of any magnitude are formatted exactly.
// Example: 1234.5 EUR returns "1 234,50 €"
// Example: 12 XYZ (unknown to the symbol table) returns "12,00 XYZ"
func FormatAmount(amount decimal.Decimal, currencyCode string) string {
	grapheme := strings.ToUpper(currencyCode)
	if cur := money.GetCurrency(grapheme); cur != nil && cur.Grapheme != "" {
		grapheme = cur.Grapheme
	}

	rounded := amount.Round(2)
	digits := rounded.Abs().StringFixed(2)
	whole, cents := digits[:len(digits)-3], digits[len(digits)-2:]

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	for i := 0; i < len(whole); i++ {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(whole[i])
	}
	b.WriteByte(',')
	b.WriteString(cents)
	b.WriteByte(' ')
	b.WriteString(grapheme)
	return b.String()
}

// ParseAmount parses user input such as "1 234,56", "1234.56" or "1,234.56".
// When both separators appear the last one is the decimal separator. A lone comma is a decimal separator.
func ParseAmount(input string) (decimal.Decimal, error) {
	s := strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "").Replace(strings.TrimSpace(input))
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is empty", apperrors.ErrValidation)
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a valid amount", apperrors.ErrValidation, input)
	}
	return d, nil
}
