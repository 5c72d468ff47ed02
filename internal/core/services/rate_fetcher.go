package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/budget_engine/internal/apperrors"
	"github.com/SscSPs/budget_engine/internal/core/domain"
	portsevents "github.com/SscSPs/budget_engine/internal/core/ports/events"
	"github.com/SscSPs/budget_engine/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/budget_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_engine/internal/core/ports/services"
	"github.com/SscSPs/budget_engine/internal/platform/schedule"
)

// SettingRatesLastUpdated is the settings key holding the last successful refresh time.
const SettingRatesLastUpdated = "rates_last_updated"

type fetchAttempt struct {
	cancel context.CancelFunc
}

// rateFetcher keeps the rate store current. At most one fetch runs at a time;
// a forced refresh cancels and replaces the one in flight.
type rateFetcher struct {
	BaseService
	provider    providers.RateProvider
	store       portssvc.RateStoreSvcFacade
	credentials portssvc.CredentialProvider
	settings    portsrepo.SettingsRepository
	now         func() time.Time

	mu          sync.Mutex
	inFlight    *fetchAttempt
	credential  string
	lastUpdated time.Time
}

// FetcherOption is a functional option for configuring the rate fetcher
type FetcherOption func(*rateFetcher)

// WithFetcherClock overrides the clock used for due checks and record timestamps.
func WithFetcherClock(now func() time.Time) FetcherOption {
	return func(f *rateFetcher) {
		f.now = now
	}
}

// WithFetcherEvents sets the publisher notified after each successful refresh.
func WithFetcherEvents(publisher portsevents.Publisher) FetcherOption {
	return func(f *rateFetcher) {
		f.Events = publisher
	}
}

// NewRateFetcher creates a fetcher. It does nothing until Start or RefreshIfDue is called.
func NewRateFetcher(provider providers.RateProvider, store portssvc.RateStoreSvcFacade, credentials portssvc.CredentialProvider, settings portsrepo.SettingsRepository, options ...FetcherOption) portssvc.RateFetcherSvc {
	f := &rateFetcher{
		provider:    provider,
		store:       store,
		credentials: credentials,
		settings:    settings,
		now:         time.Now,
	}
	for _, option := range options {
		option(f)
	}
	return f
}

var _ portssvc.RateFetcherSvc = (*rateFetcher)(nil)

func (f *rateFetcher) Start(ctx context.Context) error {
	credential, err := f.credentials.ResolveCredential(ctx)
	switch {
	case err == nil:
		f.mu.Lock()
		f.credential = credential
		f.mu.Unlock()
	case errors.Is(err, apperrors.ErrCredentialMissing):
		f.GetLogger(ctx).Warn("No rate provider credential configured, rate refresh disabled until one is set")
	default:
		return fmt.Errorf("failed to resolve rate provider credential: %w", err)
	}

	if raw, err := f.settings.GetSetting(ctx, SettingRatesLastUpdated); err == nil {
		if t, perr := time.Parse(time.RFC3339Nano, raw); perr == nil {
			f.mu.Lock()
			f.lastUpdated = t
			f.mu.Unlock()
		} else {
			f.LogError(ctx, perr, "Ignoring malformed last rate refresh time", slog.String("value", raw))
		}
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		f.LogError(ctx, err, "Failed to read last rate refresh time")
	}

	_, err = f.RefreshIfDue(ctx, false)
	return err
}

func (f *rateFetcher) Run(ctx context.Context) error {
	return schedule.RunDaily(ctx, f.now, func(ctx context.Context) {
		if _, err := f.RefreshIfDue(ctx, false); err != nil {
			f.LogError(ctx, err, "Scheduled rate refresh failed")
		}
	})
}

func (f *rateFetcher) LastUpdated() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastUpdated
}

// RefreshIfDue fetches the latest snapshot. Failures of a non-forced refresh are logged and
// reported as (false, nil) so the next window retries; a forced refresh returns them.
func (f *rateFetcher) RefreshIfDue(ctx context.Context, force bool) (bool, error) {
	f.mu.Lock()
	if !force {
		if f.inFlight != nil {
			f.mu.Unlock()
			f.LogDebug(ctx, "Rate refresh already in progress, skipping")
			return false, nil
		}
		if !f.lastUpdated.Before(domain.DayStart(f.now())) {
			f.mu.Unlock()
			return false, nil
		}
	}
	if f.credential == "" {
		f.mu.Unlock()
		if force {
			return false, apperrors.ErrCredentialMissing
		}
		f.LogDebug(ctx, "Rate refresh skipped, no credential")
		return false, nil
	}
	if f.inFlight != nil {
		f.LogInfo(ctx, "Cancelling in-flight rate refresh in favour of a forced one")
		f.inFlight.cancel()
	}
	attemptCtx, cancel := context.WithCancel(ctx)
	attempt := &fetchAttempt{cancel: cancel}
	f.inFlight = attempt
	credential := f.credential
	f.mu.Unlock()

	defer func() {
		cancel()
		f.mu.Lock()
		if f.inFlight == attempt {
			f.inFlight = nil
		}
		f.mu.Unlock()
	}()

	snap, err := f.provider.Latest(attemptCtx, credential)
	if err != nil {
		if f.superseded(attempt) {
			f.LogDebug(ctx, "Rate refresh superseded")
			return false, nil
		}
		f.LogError(ctx, err, "Rate refresh failed, keeping previous rates")
		if force {
			return false, err
		}
		return false, nil
	}
	if f.superseded(attempt) {
		return false, nil
	}

	now := f.now()
	count, err := f.store.RecordSnapshot(attemptCtx, snap, now)
	if err != nil {
		if f.superseded(attempt) {
			f.LogDebug(ctx, "Rate refresh superseded while storing")
			return false, nil
		}
		f.LogError(ctx, err, "Failed to store rate snapshot")
		if force {
			return false, err
		}
		return false, nil
	}

	// Only the current attempt may publish its rates as the latest.
	f.mu.Lock()
	if f.inFlight != attempt {
		f.mu.Unlock()
		f.LogDebug(ctx, "Rate refresh superseded after storing")
		return false, nil
	}
	f.store.UpdateCache(snap)
	f.lastUpdated = now
	f.mu.Unlock()
	if err := f.settings.SetSetting(ctx, SettingRatesLastUpdated, now.Format(time.RFC3339Nano)); err != nil {
		f.LogError(ctx, err, "Failed to persist last rate refresh time")
	}

	if _, err := f.store.Prune(ctx, now); err != nil {
		f.LogError(ctx, err, "Rate history prune failed")
	}

	f.LogInfo(ctx, "Exchange rates refreshed", slog.Int("currencies", count), slog.Bool("forced", force))

	event := domain.NewEvent(domain.EventRatesRefreshed, now)
	event.Attributes = map[string]any{"currencies": count, "base": snap.Base}
	f.Publish(ctx, event)
	return true, nil
}

func (f *rateFetcher) superseded(attempt *fetchAttempt) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inFlight != attempt
}

func (f *rateFetcher) Backfill(ctx context.Context, day time.Time) (int, error) {
	f.mu.Lock()
	credential := f.credential
	f.mu.Unlock()
	if credential == "" {
		return 0, apperrors.ErrCredentialMissing
	}

	day = domain.DayStart(day)
	now := f.now()
	if !day.Before(domain.DayStart(now)) {
		return 0, fmt.Errorf("%w: backfill date must be in the past", apperrors.ErrValidation)
	}
	if retention := f.store.Retention(); retention > 0 && day.Before(now.Add(-retention)) {
		return 0, fmt.Errorf("%w: backfill date is older than the %s rate retention window", apperrors.ErrValidation, retention)
	}

	snap, err := f.provider.Historical(ctx, credential, day)
	if err != nil {
		f.LogError(ctx, err, "Historical rate fetch failed", slog.Time("day", day))
		return 0, err
	}

	count, err := f.store.RecordSnapshot(ctx, snap, day)
	if err != nil {
		return 0, err
	}
	f.LogInfo(ctx, "Historical rates backfilled", slog.Time("day", day), slog.Int("currencies", count))
	return count, nil
}

func (f *rateFetcher) ConfigureCredential(ctx context.Context, credential string) error {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return fmt.Errorf("%w: credential must not be empty", apperrors.ErrValidation)
	}
	if err := f.credentials.StoreCredential(ctx, credential); err != nil {
		return fmt.Errorf("failed to store rate provider credential: %w", err)
	}

	f.mu.Lock()
	f.credential = credential
	f.mu.Unlock()

	_, err := f.RefreshIfDue(ctx, true)
	return err
}
