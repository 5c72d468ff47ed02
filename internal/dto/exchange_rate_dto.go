package dto

import (
	"time"

	"github.com/SscSPs/budget_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RateQuoteResponse is the API shape of a resolved rate.
type RateQuoteResponse struct {
	CurrencyCode  string          `json:"currencyCode"`
	RateToPivot   decimal.Decimal `json:"rateToPivot"`
	EffectiveDate time.Time       `json:"effectiveDate"`
	Source        string          `json:"source"`
	Stale         bool            `json:"stale"`
}

// ToRateQuoteResponse converts a domain.RateQuote to its DTO.
func ToRateQuoteResponse(q domain.RateQuote) RateQuoteResponse {
	return RateQuoteResponse{
		CurrencyCode:  q.CurrencyCode,
		RateToPivot:   q.RateToPivot,
		EffectiveDate: q.EffectiveDate,
		Source:        string(q.Source),
		Stale:         q.Stale(),
	}
}

// ExchangeRateResponse defines the structure for API responses containing a stored rate record.
type ExchangeRateResponse struct {
	ExchangeRateID string          `json:"exchangeRateID"`
	CurrencyCode   string          `json:"currencyCode"`
	RateToPivot    decimal.Decimal `json:"rateToPivot"`
	EffectiveDate  time.Time       `json:"effectiveDate"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ToExchangeRateResponse converts a domain.ExchangeRateRecord to ExchangeRateResponse DTO
func ToExchangeRateResponse(rate domain.ExchangeRateRecord) ExchangeRateResponse {
	return ExchangeRateResponse{
		ExchangeRateID: rate.ExchangeRateID,
		CurrencyCode:   rate.CurrencyCode,
		RateToPivot:    rate.RateToPivot,
		EffectiveDate:  rate.EffectiveDate,
		CreatedAt:      rate.CreatedAt,
	}
}

// ListRateHistoryParams holds paging parameters for the rate history of a currency.
type ListRateHistoryParams struct {
	Limit     int    `form:"limit,default=30" binding:"min=1,max=366"`
	NextToken string `form:"nextToken"`
}

// ListRateHistoryResponse is one page of rate history.
type ListRateHistoryResponse struct {
	Rates     []ExchangeRateResponse `json:"rates"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ConvertRequest holds the query of a single conversion.
type ConvertRequest struct {
	Amount string `form:"amount" binding:"required"` // accepts "1 234,56" and "1,234.56"
	From   string `form:"from" binding:"required,currency_code"`
	To     string `form:"to" binding:"required,currency_code"`
	Date   string `form:"date"` // YYYY-MM-DD, defaults to today
}

// ConvertResponse is the result of a single conversion.
type ConvertResponse struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	Rate      decimal.Decimal `json:"rate"`
	Stale     bool            `json:"stale"`
	Formatted string          `json:"formatted"`
}

// BackfillRatesRequest asks for the historical snapshot of a past day.
type BackfillRatesRequest struct {
	Date string `json:"date" binding:"required"` // YYYY-MM-DD
}

// ConfigureCredentialRequest carries a new provider credential.
type ConfigureCredentialRequest struct {
	Credential string `json:"credential" binding:"required,min=8"`
}

// BackfillRatesResponse reports how many records a backfill wrote.
type BackfillRatesResponse struct {
	Date     string `json:"date"`
	Recorded int    `json:"recorded"`
}

// RefreshRatesResponse reports the outcome of a refresh request.
type RefreshRatesResponse struct {
	Refreshed   bool      `json:"refreshed"`
	LastUpdated time.Time `json:"lastUpdated"`
}
