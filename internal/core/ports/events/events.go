package events

import (
	"context"

	"github.com/SscSPs/budget_engine/internal/core/domain"
)

// Publisher delivers committed domain events to interested parties.
// Implementations must not block the caller for long; delivery failures are reported
// as errors and are never allowed to undo the change that produced the event.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, event domain.Event) error

// Publish calls f(ctx, event).
func (f PublisherFunc) Publish(ctx context.Context, event domain.Event) error {
	return f(ctx, event)
}
