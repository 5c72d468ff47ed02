package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/budget_engine/internal/core/domain"
)

// ExchangeRateReader defines read operations over the rate time series.
type ExchangeRateReader interface {
	// FindLatestRateBefore returns the most recent record for code whose effective date is strictly
	// before the given instant. Returns apperrors.ErrNotFound if there is none.
	FindLatestRateBefore(ctx context.Context, currencyCode string, before time.Time) (*domain.ExchangeRateRecord, error)

	// FindLatestRate returns the most recent record for code regardless of date.
	FindLatestRate(ctx context.Context, currencyCode string) (*domain.ExchangeRateRecord, error)

	// ListRateHistory returns up to limit records for code, newest first, strictly after cursor
	// in that order when cursor is set.
	ListRateHistory(ctx context.Context, currencyCode string, cursor *domain.RateCursor, limit int) ([]domain.ExchangeRateRecord, error)
}

// ExchangeRateWriter defines write operations over the rate time series.
type ExchangeRateWriter interface {
	// SaveExchangeRates appends all records in a single transaction.
	SaveExchangeRates(ctx context.Context, records []domain.ExchangeRateRecord) error

	// DeleteExchangeRatesBefore prunes records with an effective date before cutoff.
	DeleteExchangeRatesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ExchangeRateRepositoryFacade combines all exchange rate-related repository interfaces
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}
