package dto

import (
	"time"

	"github.com/SscSPs/budget_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBudgetRequest creates the current month's budget. Amount may be omitted for a category-only budget.
type CreateBudgetRequest struct {
	Amount         *decimal.Decimal `json:"amount"`
	AlertThreshold *decimal.Decimal `json:"alertThreshold"`
}

// UpdateBudgetRequest changes the amount and threshold of a budget and its successors.
type UpdateBudgetRequest struct {
	Amount         decimal.Decimal  `json:"amount" binding:"required"`
	AlertThreshold *decimal.Decimal `json:"alertThreshold"`
}

// CategoryAllocationRequest is one category allocation.
type CategoryAllocationRequest struct {
	CategoryID string          `json:"categoryID" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
}

// SaveCategoryBudgetsRequest replaces all category allocations from a budget forward.
type SaveCategoryBudgetsRequest struct {
	Allocations []CategoryAllocationRequest `json:"allocations" binding:"dive"`
}

// ToDomainAllocations converts the request into domain allocations.
func (r SaveCategoryBudgetsRequest) ToDomainAllocations() []domain.CategoryAllocation {
	out := make([]domain.CategoryAllocation, len(r.Allocations))
	for i, a := range r.Allocations {
		out[i] = domain.CategoryAllocation{CategoryID: a.CategoryID, Amount: a.Amount}
	}
	return out
}

// BudgetResponse is the API shape of a budget.
type BudgetResponse struct {
	BudgetID       string           `json:"budgetID"`
	Month          string           `json:"month"`
	AnchorMonth    time.Time        `json:"anchorMonth"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	CurrencyCode   string           `json:"currencyCode"`
	AlertThreshold *decimal.Decimal `json:"alertThreshold,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	LastUpdatedAt  time.Time        `json:"lastUpdatedAt"`
}

// ToBudgetResponse converts a domain.Budget to its DTO.
func ToBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		BudgetID:       b.BudgetID,
		Month:          domain.MonthKey(b.AnchorMonth),
		AnchorMonth:    b.AnchorMonth,
		Amount:         b.Amount,
		CurrencyCode:   b.CurrencyCode,
		AlertThreshold: b.AlertThreshold,
		CreatedAt:      b.CreatedAt,
		LastUpdatedAt:  b.LastUpdatedAt,
	}
}

// ToListBudgetResponse converts budgets to DTOs.
func ToListBudgetResponse(budgets []domain.Budget) []BudgetResponse {
	res := make([]BudgetResponse, len(budgets))
	for i := range budgets {
		res[i] = ToBudgetResponse(&budgets[i])
	}
	return res
}

// CategoryBudgetResponse is the API shape of a category budget.
type CategoryBudgetResponse struct {
	CategoryBudgetID string          `json:"categoryBudgetID"`
	BudgetID         string          `json:"budgetID"`
	CategoryID       string          `json:"categoryID"`
	CategoryName     string          `json:"categoryName"`
	Amount           decimal.Decimal `json:"amount"`
	CurrencyCode     string          `json:"currencyCode"`
	Year             int             `json:"year"`
	Month            int             `json:"month"`
}

// ToCategoryBudgetResponses converts category budgets to DTOs.
func ToCategoryBudgetResponses(cbs []domain.CategoryBudget) []CategoryBudgetResponse {
	res := make([]CategoryBudgetResponse, len(cbs))
	for i, cb := range cbs {
		res[i] = CategoryBudgetResponse{
			CategoryBudgetID: cb.CategoryBudgetID,
			BudgetID:         cb.BudgetID,
			CategoryID:       cb.CategoryID,
			CategoryName:     cb.CategoryName,
			Amount:           cb.Amount,
			CurrencyCode:     cb.CurrencyCode,
			Year:             cb.Year,
			Month:            cb.Month,
		}
	}
	return res
}

// CategorySpending is the spending of one category budget.
type CategorySpending struct {
	CategoryBudgetResponse
	Spent      decimal.Decimal `json:"spent"`
	Percentage decimal.Decimal `json:"percentage"`
}

// BudgetSummaryResponse aggregates a budget with its allocations and spending.
type BudgetSummaryResponse struct {
	Budget               BudgetResponse     `json:"budget"`
	IsCurrentMonth       bool               `json:"isCurrentMonth"`
	TotalCategoryBudget  decimal.Decimal    `json:"totalCategoryBudget"`
	EverythingElse       *decimal.Decimal   `json:"everythingElse,omitempty"`
	TotalSpent           decimal.Decimal    `json:"totalSpent"`
	Percentage           decimal.Decimal    `json:"percentage"`
	NonBudgetedSpending  decimal.Decimal    `json:"nonBudgetedSpending"`
	ThresholdReached     bool               `json:"thresholdReached"`
	Categories           []CategorySpending `json:"categories"`
	FormattedTotalSpent  string             `json:"formattedTotalSpent"`
	FormattedBudgetTotal string             `json:"formattedBudgetTotal,omitempty"`
}

// LedgerConversionResult reports what a reporting currency change re-stamped.
type LedgerConversionResult struct {
	From                     string `json:"from"`
	To                       string `json:"to"`
	ExpensesConverted        int    `json:"expensesConverted"`
	BudgetsConverted         int    `json:"budgetsConverted"`
	CategoryBudgetsConverted int    `json:"categoryBudgetsConverted"`
	StaleRatesUsed           int    `json:"staleRatesUsed"`
}
