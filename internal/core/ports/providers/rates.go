package providers

import (
	"context"
	"time"

	"github.com/SscSPs/budget_engine/internal/core/domain"
)

// RateProvider is the remote source of rate snapshots against the pivot currency.
type RateProvider interface {
	// Latest fetches the current snapshot.
	Latest(ctx context.Context, credential string) (domain.RateSnapshot, error)

	// Historical fetches the end-of-day snapshot of a past day.
	Historical(ctx context.Context, credential string, day time.Time) (domain.RateSnapshot, error)
}
