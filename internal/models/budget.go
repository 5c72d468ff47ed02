package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is the row of the budgets table. The anchor month is unique.
type Budget struct {
	BudgetID       string              `db:"budget_id"`
	AnchorMonth    time.Time           `db:"anchor_month"`
	Amount         decimal.NullDecimal `db:"amount"`
	CurrencyCode   string              `db:"currency_code"`
	AlertThreshold decimal.NullDecimal `db:"alert_threshold"`
	AuditFields
}

// CategoryBudget is the row of the category_budgets table.
type CategoryBudget struct {
	CategoryBudgetID string          `db:"category_budget_id"`
	BudgetID         string          `db:"budget_id"`
	CategoryID       string          `db:"category_id"`
	CategoryName     string          `db:"category_name"`
	Amount           decimal.Decimal `db:"amount"`
	CurrencyCode     string          `db:"currency_code"`
	Year             int             `db:"year"`
	Month            int             `db:"month"`
	AuditFields
}
