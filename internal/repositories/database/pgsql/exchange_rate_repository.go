package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/budget_engine/internal/apperrors"
	"github.com/SscSPs/budget_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_engine/internal/core/ports/repositories"
	"github.com/SscSPs/budget_engine/internal/models"
	"github.com/SscSPs/budget_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxExchangeRateRepository stores the rate time series of every currency against the pivot.
type PgxExchangeRateRepository struct {
	BaseRepository
}

func newPgxExchangeRateRepository(db *pgxpool.Pool) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

const rateColumns = `exchange_rate_id, currency_code, rate_to_pivot, effective_date, created_at`

func scanRate(row pgx.Row) (models.ExchangeRate, error) {
	var m models.ExchangeRate
	err := row.Scan(&m.ExchangeRateID, &m.CurrencyCode, &m.RateToPivot, &m.EffectiveDate, &m.CreatedAt)
	return m, err
}

// Rate reads always go to the pool: lookups run concurrently and must not share a ledger transaction.
func (r *PgxExchangeRateRepository) findOne(ctx context.Context, query string, args ...any) (*domain.ExchangeRateRecord, error) {
	modelRate, err := scanRate(r.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find exchange rate", err)
	}
	rec := mapping.ToDomainExchangeRate(modelRate)
	return &rec, nil
}

// FindLatestRateBefore retrieves the newest record of a currency effective strictly before the given instant.
func (r *PgxExchangeRateRepository) FindLatestRateBefore(ctx context.Context, currencyCode string, before time.Time) (*domain.ExchangeRateRecord, error) {
	query := `
		SELECT ` + rateColumns + `
		FROM exchange_rates
		WHERE currency_code = $1 AND effective_date < $2
		ORDER BY effective_date DESC, created_at DESC
		LIMIT 1;
	`
	return r.findOne(ctx, query, currencyCode, before)
}

// FindLatestRate retrieves the newest record of a currency of any date.
func (r *PgxExchangeRateRepository) FindLatestRate(ctx context.Context, currencyCode string) (*domain.ExchangeRateRecord, error) {
	query := `
		SELECT ` + rateColumns + `
		FROM exchange_rates
		WHERE currency_code = $1
		ORDER BY effective_date DESC, created_at DESC
		LIMIT 1;
	`
	return r.findOne(ctx, query, currencyCode)
}

// ListRateHistory lists records of a currency newest first, resuming after cursor.
func (r *PgxExchangeRateRepository) ListRateHistory(ctx context.Context, currencyCode string, cursor *domain.RateCursor, limit int) ([]domain.ExchangeRateRecord, error) {
	query := `
		SELECT ` + rateColumns + `
		FROM exchange_rates
		WHERE currency_code = $1
		ORDER BY effective_date DESC, created_at DESC
		LIMIT $2;
	`
	args := []any{currencyCode, limit}
	if cursor != nil {
		query = `
			SELECT ` + rateColumns + `
			FROM exchange_rates
			WHERE currency_code = $1 AND (effective_date, created_at) < ($3, $4)
			ORDER BY effective_date DESC, created_at DESC
			LIMIT $2;
		`
		args = append(args, cursor.EffectiveDate, cursor.CreatedAt)
	}
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query exchange rate history", err)
	}
	defer rows.Close()

	modelRates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ExchangeRate, error) {
		return scanRate(row)
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan exchange rates", err)
	}
	return mapping.ToDomainExchangeRateSlice(modelRates), nil
}

// SaveExchangeRates appends all records atomically using a single batch.
func (r *PgxExchangeRateRepository) SaveExchangeRates(ctx context.Context, records []domain.ExchangeRateRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.RunInTx(ctx, func(ctx context.Context) error {
		batch := &pgx.Batch{}
		for _, rec := range records {
			m := mapping.ToModelExchangeRate(rec)
			batch.Queue(`INSERT INTO exchange_rates (`+rateColumns+`) VALUES ($1, $2, $3, $4, $5)`,
				m.ExchangeRateID, m.CurrencyCode, m.RateToPivot, m.EffectiveDate, m.CreatedAt)
		}

		results := r.DB(ctx).SendBatch(ctx, batch)
		for i := range records {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return apperrors.NewAppError(500, fmt.Sprintf("failed to save exchange rate for %s", records[i].CurrencyCode), err)
			}
		}
		if err := results.Close(); err != nil {
			return apperrors.NewAppError(500, "failed to save exchange rates", err)
		}
		return nil
	})
}

// DeleteExchangeRatesBefore prunes records effective before cutoff.
func (r *PgxExchangeRateRepository) DeleteExchangeRatesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.DB(ctx).Exec(ctx, `DELETE FROM exchange_rates WHERE effective_date < $1`, cutoff)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to prune exchange rates", err)
	}
	return tag.RowsAffected(), nil
}
