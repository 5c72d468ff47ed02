package services

import (
	"context"
	"time"

	"github.com/SscSPs/budget_engine/internal/core/domain"
	"github.com/SscSPs/budget_engine/internal/dto"
	"github.com/shopspring/decimal"
)

// CurrencyReaderSvc defines read operations for currency data
type CurrencyReaderSvc interface {
	// GetCurrencyByCode retrieves a specific currency by its code.
	GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies retrieves all available currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// CurrencyWriterSvc defines write operations for currency data
type CurrencyWriterSvc interface {
	// CreateCurrency persists a new currency.
	CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error)
}

// CurrencySvcFacade combines all currency-related service interfaces
type CurrencySvcFacade interface {
	CurrencyReaderSvc
	CurrencyWriterSvc
}

// RateReaderSvc is the read-only face of the rate store offered to external callers.
type RateReaderSvc interface {
	// GetRate resolves the rate of code in effect on date, degrading to the latest record
	// and then to the in-memory cache. Returns apperrors.ErrRateUnavailable when nothing is known.
	GetRate(ctx context.Context, currencyCode string, date time.Time) (domain.RateQuote, error)

	// ListRateHistory pages through the stored records of a currency, newest first.
	ListRateHistory(ctx context.Context, currencyCode string, params dto.ListRateHistoryParams) (*dto.ListRateHistoryResponse, error)
}

// RateStoreSvcFacade adds the write side used by the fetcher and operators.
type RateStoreSvcFacade interface {
	RateReaderSvc

	// RecordSnapshot writes one record per currency of snap stamped with effective, all or nothing.
	RecordSnapshot(ctx context.Context, snap domain.RateSnapshot, effective time.Time) (int, error)

	// UpdateCache replaces the in-memory current rates.
	UpdateCache(snap domain.RateSnapshot)

	// Prune deletes records older than the retention window.
	Prune(ctx context.Context, now time.Time) (int64, error)

	// Retention is the window Prune keeps.
	Retention() time.Duration
}

// RateFetcherSvc refreshes the rate store from the remote provider.
type RateFetcherSvc interface {
	// RefreshIfDue fetches today's snapshot unless one was already fetched today.
	// It reports whether a refresh actually completed.
	RefreshIfDue(ctx context.Context, force bool) (bool, error)

	// Backfill fetches and stores the historical snapshot of a past day.
	Backfill(ctx context.Context, day time.Time) (int, error)

	// ConfigureCredential stores a provider credential and forces a refresh.
	ConfigureCredential(ctx context.Context, credential string) error

	// LastUpdated returns the time of the last successful refresh.
	LastUpdated() time.Time

	// Start resolves the credential, restores the last refresh time and refreshes if due.
	Start(ctx context.Context) error

	// Run refreshes at every local midnight until ctx is cancelled.
	Run(ctx context.Context) error
}

// CurrencyConverterSvc converts amounts through the pivot currency.
type CurrencyConverterSvc interface {
	// Convert converts amount from one currency to another using the rates in effect on date.
	Convert(ctx context.Context, amount decimal.Decimal, from, to string, on time.Time) (domain.Conversion, error)

	// ConvertLedger re-stamps every expense and every budget in currency from into currency to, atomically.
	ConvertLedger(ctx context.Context, from, to string) (*dto.LedgerConversionResult, error)

	// Format renders amount with the currency symbol, two decimals, space grouping and comma decimals.
	Format(amount decimal.Decimal, currencyCode string) string
}
