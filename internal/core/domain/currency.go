package domain

import "strings"

// Currency represents a supported currency in the domain.
// Currencies are immutable reference data deduplicated by code.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // Primary Key (e.g., "USD")
	Name         string `json:"name"`         // e.g., "US Dollar"
	Symbol       string `json:"symbol"`       // e.g., "$"
	Flag         string `json:"flag"`         // e.g., "🇺🇸"
	AuditFields
}

// NormalizeCurrencyCode upper-cases and trims a currency code.
func NormalizeCurrencyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// FlagForCode derives a flag glyph from the ISO 4217 country prefix of a currency code.
// EUR maps to the EU flag; codes without a country prefix (e.g. XAU) get no flag.
func FlagForCode(code string) string {
	code = NormalizeCurrencyCode(code)
	if len(code) != 3 {
		return ""
	}
	prefix := code[:2]
	if code == "EUR" {
		prefix = "EU"
	}
	if prefix[0] == 'X' {
		return ""
	}
	var b strings.Builder
	for _, r := range prefix {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + (r - 'A'))
	}
	return b.String()
}
