package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is one stored point of a currency's rate against the pivot currency.
type ExchangeRate struct {
	ExchangeRateID string          `db:"exchange_rate_id"` // Primary Key (UUID)
	CurrencyCode   string          `db:"currency_code"`
	RateToPivot    decimal.Decimal `db:"rate_to_pivot"`
	EffectiveDate  time.Time       `db:"effective_date"`
	CreatedAt      time.Time       `db:"created_at"`
}
