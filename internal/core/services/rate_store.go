package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/budget_engine/internal/apperrors"
	"github.com/SscSPs/budget_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_engine/internal/core/ports/services"
	"github.com/SscSPs/budget_engine/internal/dto"
	"github.com/SscSPs/budget_engine/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// rateStore resolves historical rates from the rate time series, degrading to the
// newest record and then to the in-memory snapshot of the last successful fetch.
type rateStore struct {
	BaseService
	rateRepo  portsrepo.ExchangeRateRepositoryFacade
	pivot     string
	retention time.Duration
	now       func() time.Time

	mu        sync.RWMutex
	cache     map[string]decimal.Decimal
	cacheTime time.Time
}

// RateStoreOption is a functional option for configuring the rate store
type RateStoreOption func(*rateStore)

// WithRateStoreClock overrides the clock used for pruning and record timestamps.
func WithRateStoreClock(now func() time.Time) RateStoreOption {
	return func(s *rateStore) {
		s.now = now
	}
}

// WithRetention sets how long records are kept by Prune.
func WithRetention(retention time.Duration) RateStoreOption {
	return func(s *rateStore) {
		s.retention = retention
	}
}

// NewRateStore creates a rate store for rates expressed against pivot.
func NewRateStore(rateRepo portsrepo.ExchangeRateRepositoryFacade, pivot string, options ...RateStoreOption) portssvc.RateStoreSvcFacade {
	s := &rateStore{
		rateRepo:  rateRepo,
		pivot:     domain.NormalizeCurrencyCode(pivot),
		retention: 365 * 24 * time.Hour,
		now:       time.Now,
		cache:     map[string]decimal.Decimal{},
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.RateStoreSvcFacade = (*rateStore)(nil)

// rateScale matches the precision of the rate_to_pivot column.
const rateScale = 12

func (s *rateStore) GetRate(ctx context.Context, currencyCode string, date time.Time) (domain.RateQuote, error) {
	code := domain.NormalizeCurrencyCode(currencyCode)
	if code == s.pivot {
		return domain.RateQuote{CurrencyCode: code, RateToPivot: decimal.NewFromInt(1), EffectiveDate: date, Source: domain.RateSourceIdentity}, nil
	}

	// Day granularity: any record stamped on the requested day is in effect for it.
	rec, err := s.rateRepo.FindLatestRateBefore(ctx, code, domain.DayStart(date).AddDate(0, 0, 1))
	if err == nil {
		return quoteFromRecord(*rec, domain.RateSourceHistory), nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to look up historical rate", slog.String("currency_code", code))
		return domain.RateQuote{}, fmt.Errorf("failed to look up rate for %s: %w", code, err)
	}

	rec, err = s.rateRepo.FindLatestRate(ctx, code)
	if err == nil {
		s.LogDebug(ctx, "No rate at or before date, using latest record",
			slog.String("currency_code", code),
			slog.Time("date", date),
			slog.Time("effective_date", rec.EffectiveDate))
		return quoteFromRecord(*rec, domain.RateSourceLatest), nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to look up latest rate", slog.String("currency_code", code))
		return domain.RateQuote{}, fmt.Errorf("failed to look up rate for %s: %w", code, err)
	}

	s.mu.RLock()
	rate, ok := s.cache[code]
	cachedAt := s.cacheTime
	s.mu.RUnlock()
	if ok {
		return domain.RateQuote{CurrencyCode: code, RateToPivot: rate, EffectiveDate: cachedAt, Source: domain.RateSourceCache}, nil
	}

	return domain.RateQuote{}, fmt.Errorf("%w: %s", apperrors.ErrRateUnavailable, code)
}

func quoteFromRecord(rec domain.ExchangeRateRecord, source domain.RateSource) domain.RateQuote {
	return domain.RateQuote{
		CurrencyCode:  rec.CurrencyCode,
		RateToPivot:   rec.RateToPivot,
		EffectiveDate: rec.EffectiveDate,
		Source:        source,
	}
}

func (s *rateStore) ListRateHistory(ctx context.Context, currencyCode string, params dto.ListRateHistoryParams) (*dto.ListRateHistoryResponse, error) {
	code := domain.NormalizeCurrencyCode(currencyCode)

	var cursor *domain.RateCursor
	if params.NextToken != "" {
		effectiveDate, createdAt, err := pagination.DecodeToken(params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		cursor = &domain.RateCursor{EffectiveDate: effectiveDate, CreatedAt: createdAt}
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 30
	}

	// Fetch one extra row to know whether another page exists.
	records, err := s.rateRepo.ListRateHistory(ctx, code, cursor, limit+1)
	if err != nil {
		s.LogError(ctx, err, "Failed to list rate history", slog.String("currency_code", code))
		return nil, fmt.Errorf("failed to list rate history in service: %w", err)
	}

	resp := &dto.ListRateHistoryResponse{Rates: []dto.ExchangeRateResponse{}}
	if len(records) > limit {
		records = records[:limit]
		last := records[len(records)-1]
		token := pagination.EncodeToken(last.EffectiveDate, last.CreatedAt)
		resp.NextToken = &token
	}
	for _, rec := range records {
		resp.Rates = append(resp.Rates, dto.ToExchangeRateResponse(rec))
	}
	return resp, nil
}

// rebase returns the snapshot's rates expressed against the store's pivot.
// A snapshot with no base is taken to be quoted against the pivot already.
func (s *rateStore) rebase(snap domain.RateSnapshot) (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal, len(snap.Rates))
	for code, rate := range snap.Rates {
		if !rate.IsPositive() {
			return nil, fmt.Errorf("%w: rate for %s must be positive", apperrors.ErrValidation, code)
		}
		rates[domain.NormalizeCurrencyCode(code)] = rate
	}

	base := domain.NormalizeCurrencyCode(snap.Base)
	if base == "" || base == s.pivot {
		return rates, nil
	}
	pivotRate, ok := rates[s.pivot]
	if !ok {
		return nil, fmt.Errorf("%w: snapshot based on %s has no rate for pivot %s", apperrors.ErrFetchFailed, base, s.pivot)
	}
	for code, rate := range rates {
		rates[code] = rate.DivRound(pivotRate, rateScale)
	}
	rates[s.pivot] = decimal.NewFromInt(1)
	return rates, nil
}

func (s *rateStore) RecordSnapshot(ctx context.Context, snap domain.RateSnapshot, effective time.Time) (int, error) {
	if len(snap.Rates) == 0 {
		return 0, fmt.Errorf("%w: snapshot has no rates", apperrors.ErrValidation)
	}
	rates, err := s.rebase(snap)
	if err != nil {
		s.LogError(ctx, err, "Rejected rate snapshot", slog.String("base", snap.Base))
		return 0, err
	}

	now := s.now()
	records := make([]domain.ExchangeRateRecord, 0, len(rates))
	for code, rate := range rates {
		records = append(records, domain.ExchangeRateRecord{
			ExchangeRateID: uuid.NewString(),
			CurrencyCode:   code,
			EffectiveDate:  effective,
			RateToPivot:    rate,
			CreatedAt:      now,
		})
	}

	if err := s.rateRepo.SaveExchangeRates(ctx, records); err != nil {
		s.LogError(ctx, err, "Failed to save rate snapshot", slog.Int("count", len(records)))
		return 0, fmt.Errorf("failed to record rate snapshot: %w", err)
	}

	s.LogInfo(ctx, "Rate snapshot recorded",
		slog.Int("count", len(records)),
		slog.Time("effective_date", effective))
	return len(records), nil
}

// UpdateCache replaces the in-memory rates. A snapshot that cannot be re-based
// onto the pivot leaves the previous cache in place.
func (s *rateStore) UpdateCache(snap domain.RateSnapshot) {
	rates, err := s.rebase(snap)
	if err != nil {
		s.LogError(context.Background(), err, "Rate cache not updated", slog.String("base", snap.Base))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = rates
	s.cacheTime = snap.Timestamp
}

// Retention is how far back history is kept.
func (s *rateStore) Retention() time.Duration {
	return s.retention
}

func (s *rateStore) Prune(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-s.retention)
	deleted, err := s.rateRepo.DeleteExchangeRatesBefore(ctx, cutoff)
	if err != nil {
		s.LogError(ctx, err, "Failed to prune rate history", slog.Time("cutoff", cutoff))
		return 0, fmt.Errorf("failed to prune rate history: %w", err)
	}
	if deleted > 0 {
		s.LogInfo(ctx, "Pruned rate history", slog.Int64("deleted", deleted), slog.Time("cutoff", cutoff))
	}
	return deleted, nil
}
