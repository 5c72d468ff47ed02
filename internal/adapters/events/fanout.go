package events

import (
	"context"
	"errors"

	"github.com/SscSPs/budget_engine/internal/core/domain"
	"github.com/SscSPs/budget_engine/internal/core/ports/events"
)

// FanOut delivers every event to all publishers and joins their errors.
type FanOut []events.Publisher

var _ events.Publisher = FanOut(nil)

// Publish calls every publisher even when an earlier one fails.
func (f FanOut) Publish(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Noop discards events.
type Noop struct{}

// Publish does nothing.
func (Noop) Publish(context.Context, domain.Event) error { return nil }
