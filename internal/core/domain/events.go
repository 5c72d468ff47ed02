package domain

import "time"

// EventType names a domain event published after a successful mutation.
type EventType string

const (
	EventBudgetCreated        EventType = "budget.created"
	EventBudgetUpdated        EventType = "budget.updated"
	EventBudgetDeleted        EventType = "budget.deleted"
	EventFutureBudgetsCreated EventType = "budget.propagated"
	EventCategoryBudgetsSaved EventType = "budget.categories_saved"
	EventBudgetReconciled     EventType = "budget.reconciled"
	EventLedgerConverted      EventType = "ledger.converted"
	EventRatesRefreshed       EventType = "rates.refreshed"
)

// Event is a notification about a committed change.
type Event struct {
	Type       EventType      `json:"type"`
	BudgetID   string         `json:"budgetID,omitempty"`
	Month      string         `json:"month,omitempty"` // YYYY-MM
	Attributes map[string]any `json:"attributes,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// NewEvent builds an event stamped with now.
func NewEvent(t EventType, now time.Time) Event {
	return Event{Type: t, OccurredAt: now}
}

// MonthKey formats an anchor month as YYYY-MM.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
