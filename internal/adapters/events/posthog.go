package events

import (
	"context"

	"github.com/SscSPs/budget_engine/internal/core/domain"
	"github.com/SscSPs/budget_engine/internal/utils"
)

// AnalyticsPublisher forwards events to product analytics.
type AnalyticsPublisher struct {
	client *utils.PosthogClientWrapper
}

// NewAnalyticsPublisher wraps an initialised (or empty) posthog client.
func NewAnalyticsPublisher(client *utils.PosthogClientWrapper) *AnalyticsPublisher {
	return &AnalyticsPublisher{client: client}
}

// Publish enqueues the event under the acting user, or the system actor.
func (a *AnalyticsPublisher) Publish(_ context.Context, event domain.Event) error {
	if a.client == nil || !a.client.IsInitialized() {
		return nil
	}
	actor := domain.SystemActor
	if id, ok := event.Attributes["actor"].(string); ok && id != "" {
		actor = id
	}
	props := make(map[string]any, len(event.Attributes)+2)
	for k, v := range event.Attributes {
		props[k] = v
	}
	if event.BudgetID != "" {
		props["budget_id"] = event.BudgetID
	}
	if event.Month != "" {
		props["month"] = event.Month
	}
	a.client.Enqueue(actor, string(event.Type), props)
	return nil
}
