package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is the spending plan for one calendar month.
// Amount is optional: a budget may exist only to carry category allocations.
type Budget struct {
	BudgetID       string           `json:"budgetID"`
	AnchorMonth    time.Time        `json:"anchorMonth"` // first day of the month, 00:00
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	CurrencyCode   string           `json:"currencyCode"`
	AlertThreshold *decimal.Decimal `json:"alertThreshold,omitempty"`
	AuditFields
}

// AmountOrZero returns the budget amount, or zero when the budget is category-only.
func (b Budget) AmountOrZero() decimal.Decimal {
	if b.Amount == nil {
		return decimal.Zero
	}
	return *b.Amount
}

// CategoryBudget is a sub-allocation of a Budget to a single category.
// Year and Month duplicate the parent's anchor month for direct querying.
type CategoryBudget struct {
	CategoryBudgetID string          `json:"categoryBudgetID"`
	BudgetID         string          `json:"budgetID"`
	CategoryID       string          `json:"categoryID"`
	CategoryName     string          `json:"categoryName"` // snapshot taken when the allocation was saved
	Amount           decimal.Decimal `json:"amount"`
	CurrencyCode     string          `json:"currencyCode"`
	Year             int             `json:"year"`
	Month            int             `json:"month"`
	AuditFields
}

// CategoryAllocation is the input for replacing the category budgets of a chain of months.
type CategoryAllocation struct {
	CategoryID string
	Amount     decimal.Decimal
}

// TotalCategoryBudget sums the amounts of the given category budgets.
func TotalCategoryBudget(cbs []CategoryBudget) decimal.Decimal {
	total := decimal.Zero
	for _, cb := range cbs {
		total = total.Add(cb.Amount)
	}
	return total
}

// EverythingElseAmount returns the part of the budget total not allocated to categories.
// The second result is false when the budget has no amount or the remainder would be negative.
func EverythingElseAmount(b Budget, cbs []CategoryBudget) (decimal.Decimal, bool) {
	if b.Amount == nil {
		return decimal.Zero, false
	}
	rest := b.Amount.Sub(TotalCategoryBudget(cbs))
	if rest.IsNegative() {
		return decimal.Zero, false
	}
	return rest, true
}

// Percentage returns spent/limit*100, or zero when limit is zero.
func Percentage(spent, limit decimal.Decimal) decimal.Decimal {
	if limit.IsZero() {
		return decimal.Zero
	}
	return spent.Div(limit).Mul(decimal.NewFromInt(100))
}

// NonBudgetedSpending sums the converted amounts of expenses whose category has no category budget.
func NonBudgetedSpending(expenses []Expense, cbs []CategoryBudget) decimal.Decimal {
	budgeted := make(map[string]struct{}, len(cbs))
	for _, cb := range cbs {
		budgeted[cb.CategoryID] = struct{}{}
	}
	total := decimal.Zero
	for _, e := range expenses {
		if _, ok := budgeted[e.CategoryID]; ok {
			continue
		}
		total = total.Add(e.ConvertedAmount)
	}
	return total
}

// TotalSpent sums the converted amounts of the given expenses.
func TotalSpent(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.ConvertedAmount)
	}
	return total
}

// SpentInCategory sums the converted amounts of expenses in one category.
func SpentInCategory(expenses []Expense, categoryID string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if e.CategoryID == categoryID {
			total = total.Add(e.ConvertedAmount)
		}
	}
	return total
}
