package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is the row of the expenses table.
type Expense struct {
	ExpenseID        string          `db:"expense_id"`
	CategoryID       string          `db:"category_id"`
	Description      string          `db:"description"`
	OriginalAmount   decimal.Decimal `db:"original_amount"`
	OriginalCurrency string          `db:"original_currency"`
	ConvertedAmount  decimal.Decimal `db:"converted_amount"`
	ConversionRate   decimal.Decimal `db:"conversion_rate"`
	ExpenseDate      time.Time       `db:"expense_date"`
	AuditFields
}

// Category is the row of the categories table.
type Category struct {
	CategoryID string `db:"category_id"`
	Name       string `db:"name"`
	Icon       string `db:"icon"`
}
