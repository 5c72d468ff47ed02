package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRateRecord is one point of the rate time series of a currency.
// RateToPivot is the number of units of the currency per one unit of the pivot currency.
// Records are never updated in place; newer records supersede older ones.
type ExchangeRateRecord struct {
	ExchangeRateID string          `json:"exchangeRateID"`
	CurrencyCode   string          `json:"currencyCode"`
	EffectiveDate  time.Time       `json:"effectiveDate"`
	RateToPivot    decimal.Decimal `json:"rateToPivot"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// RateCursor is the keyset position of a record in a newest-first history listing.
type RateCursor struct {
	EffectiveDate time.Time
	CreatedAt     time.Time
}

// RateSource tells which resolution step produced a rate.
type RateSource string

const (
	// RateSourceHistory is a record effective at or before the requested date.
	RateSourceHistory RateSource = "history"
	// RateSourceLatest is the most recent record of any date, used when no earlier record exists.
	RateSourceLatest RateSource = "latest"
	// RateSourceCache is the in-memory snapshot of the last successful fetch.
	RateSourceCache RateSource = "cache"
	// RateSourceIdentity is the implicit unit rate between a currency and itself.
	RateSourceIdentity RateSource = "identity"
)

// RateQuote is a resolved rate along with where it came from.
type RateQuote struct {
	CurrencyCode  string          `json:"currencyCode"`
	RateToPivot   decimal.Decimal `json:"rateToPivot"`
	EffectiveDate time.Time       `json:"effectiveDate"`
	Source        RateSource      `json:"source"`
}

// Stale reports whether the quote was not resolved from history at or before the requested date.
func (q RateQuote) Stale() bool {
	return q.Source == RateSourceLatest || q.Source == RateSourceCache
}

// RateSnapshot is a full set of rates published by the provider at one instant.
type RateSnapshot struct {
	Base      string                     `json:"base"`
	Timestamp time.Time                  `json:"timestamp"`
	Rates     map[string]decimal.Decimal `json:"rates"`
}

// Conversion is the result of converting an amount between two currencies.
type Conversion struct {
	Amount decimal.Decimal `json:"amount"`
	// Rate is the effective from->to rate applied (rateTo / rateFrom).
	Rate  decimal.Decimal `json:"rate"`
	Stale bool            `json:"stale"`
}
