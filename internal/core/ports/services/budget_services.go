package services

import (
	"context"
	"time"

	"github.com/SscSPs/budget_engine/internal/core/domain"
	"github.com/SscSPs/budget_engine/internal/dto"
	"github.com/shopspring/decimal"
)

// BudgetWriterSvc defines the mutating budget lifecycle operations.
// Every operation fails fast with apperrors.ErrOperationInProgress while another one runs.
type BudgetWriterSvc interface {
	// CreateBudget creates the budget of the current month and propagates it forward.
	CreateBudget(ctx context.Context, req dto.CreateBudgetRequest, userID string) (*domain.Budget, error)

	// UpdateBudget updates a budget and forces every later budget to the same amount and threshold.
	UpdateBudget(ctx context.Context, budgetID string, req dto.UpdateBudgetRequest, userID string) (*domain.Budget, error)

	// DeleteBudget deletes a budget and every budget anchored at or after its month.
	DeleteBudget(ctx context.Context, budgetID string, userID string) ([]string, error)

	// CreateFutureBudgets fills the propagation horizon after the source budget's month.
	CreateFutureBudgets(ctx context.Context, sourceBudgetID string, userID string) ([]domain.Budget, error)

	// SaveCategoryBudgets replaces the category budgets of the target and every later budget.
	SaveCategoryBudgets(ctx context.Context, budgetID string, req dto.SaveCategoryBudgetsRequest, userID string) ([]domain.CategoryBudget, error)

	// ReconcileBudgetAmount raises the budget total to the category sum when the sum exceeds it.
	ReconcileBudgetAmount(ctx context.Context, budgetID string, userID string) (*domain.Budget, error)
}

// BudgetReaderSvc defines the side-effect free budget queries.
type BudgetReaderSvc interface {
	GetBudget(ctx context.Context, budgetID string) (*domain.Budget, error)
	GetCurrentMonthBudget(ctx context.Context) (*domain.Budget, error)
	ListBudgets(ctx context.Context, from time.Time) ([]domain.Budget, error)
	ListCategoryBudgets(ctx context.Context, budgetID string) ([]domain.CategoryBudget, error)
	CalculateTotalCategoryBudget(ctx context.Context, budgetID string) (decimal.Decimal, error)
	CalculateEverythingElseAmount(ctx context.Context, budgetID string) (*decimal.Decimal, error)
	ExpensesForBudget(ctx context.Context, budget domain.Budget) ([]domain.Expense, error)
	CalculateNonBudgetedSpending(ctx context.Context, budgetID string) (decimal.Decimal, error)
	CalculatePercentage(spent, limit decimal.Decimal) decimal.Decimal
	IsCurrentMonth(budget domain.Budget) bool
	GetBudgetSummary(ctx context.Context, budgetID string) (*dto.BudgetSummaryResponse, error)
}

// BudgetSvcFacade combines all budget-related service interfaces
type BudgetSvcFacade interface {
	BudgetWriterSvc
	BudgetReaderSvc
}
