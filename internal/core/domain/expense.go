package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a ledger entry owned by the expense collaborator.
// ConvertedAmount is expressed in the reporting currency using ConversionRate.
type Expense struct {
	ExpenseID        string          `json:"expenseID"`
	CategoryID       string          `json:"categoryID"`
	Description      string          `json:"description"`
	OriginalAmount   decimal.Decimal `json:"originalAmount"`
	OriginalCurrency string          `json:"originalCurrency"`
	ConvertedAmount  decimal.Decimal `json:"convertedAmount"`
	ConversionRate   decimal.Decimal `json:"conversionRate"`
	Date             time.Time       `json:"date"`
	AuditFields
}
