package dto

import (
	"time"

	"github.com/SscSPs/budget_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateExpenseRequest records an expense in its original currency.
type CreateExpenseRequest struct {
	CategoryID   string          `json:"categoryID" binding:"required"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode string          `json:"currencyCode" binding:"required,currency_code"`
	Date         time.Time       `json:"date" binding:"required"`
}

// ListExpensesParams bounds an expense listing to [From, To).
type ListExpensesParams struct {
	From time.Time `form:"from" time_format:"2006-01-02" binding:"required"`
	To   time.Time `form:"to" time_format:"2006-01-02" binding:"required"`
}

// ExpenseResponse is the API shape of an expense.
type ExpenseResponse struct {
	ExpenseID        string          `json:"expenseID"`
	CategoryID       string          `json:"categoryID"`
	Description      string          `json:"description"`
	OriginalAmount   decimal.Decimal `json:"originalAmount"`
	OriginalCurrency string          `json:"originalCurrency"`
	ConvertedAmount  decimal.Decimal `json:"convertedAmount"`
	ConversionRate   decimal.Decimal `json:"conversionRate"`
	Date             time.Time       `json:"date"`
}

// ToExpenseResponse converts a domain.Expense to its DTO.
func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ExpenseID:        e.ExpenseID,
		CategoryID:       e.CategoryID,
		Description:      e.Description,
		OriginalAmount:   e.OriginalAmount,
		OriginalCurrency: e.OriginalCurrency,
		ConvertedAmount:  e.ConvertedAmount,
		ConversionRate:   e.ConversionRate,
		Date:             e.Date,
	}
}

// ChangeReportingCurrencyRequest switches the reporting currency and converts the ledger.
type ChangeReportingCurrencyRequest struct {
	CurrencyCode string `json:"currencyCode" binding:"required,currency_code"`
}

// SettingsResponse exposes the non-secret settings.
type SettingsResponse struct {
	ReportingCurrency string    `json:"reportingCurrency,omitempty"`
	RatesLastUpdated  time.Time `json:"ratesLastUpdated"`
	CredentialSet     bool      `json:"credentialSet"`
}
