package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/budget_engine/internal/core/domain"
)

// BudgetReader defines read operations for budgets.
type BudgetReader interface {
	// FindBudgetByID retrieves a budget by its identifier.
	FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error)

	// FindBudgetByMonth retrieves the budget anchored on the given month.
	FindBudgetByMonth(ctx context.Context, month time.Time) (*domain.Budget, error)

	// ListBudgetsFrom lists budgets anchored at or after month, oldest first.
	ListBudgetsFrom(ctx context.Context, month time.Time) ([]domain.Budget, error)

	// ListBudgetsByCurrency lists budgets stamped with the given currency.
	ListBudgetsByCurrency(ctx context.Context, currencyCode string) ([]domain.Budget, error)
}

// BudgetWriter defines write operations for budgets.
type BudgetWriter interface {
	// SaveBudget inserts a budget. Returns apperrors.ErrDuplicate if its month already has one.
	SaveBudget(ctx context.Context, budget domain.Budget) error

	// UpdateBudget overwrites amount, currency and threshold of an existing budget.
	UpdateBudget(ctx context.Context, budget domain.Budget) error

	// DeleteBudgets removes budgets and their category budgets.
	DeleteBudgets(ctx context.Context, budgetIDs []string) error
}

// CategoryBudgetReader defines read operations for category budgets.
type CategoryBudgetReader interface {
	// ListCategoryBudgets lists the category budgets of a budget.
	ListCategoryBudgets(ctx context.Context, budgetID string) ([]domain.CategoryBudget, error)
}

// CategoryBudgetWriter defines write operations for category budgets.
type CategoryBudgetWriter interface {
	// SaveCategoryBudgets inserts category budgets.
	SaveCategoryBudgets(ctx context.Context, categoryBudgets []domain.CategoryBudget) error

	// UpdateCategoryBudget overwrites amount and currency of a category budget.
	UpdateCategoryBudget(ctx context.Context, categoryBudget domain.CategoryBudget) error

	// DeleteCategoryBudgetsByBudget removes every category budget owned by the given budgets.
	DeleteCategoryBudgetsByBudget(ctx context.Context, budgetIDs []string) error
}

// BudgetRepositoryFacade combines all budget ledger repository interfaces
type BudgetRepositoryFacade interface {
	BudgetReader
	BudgetWriter
	CategoryBudgetReader
	CategoryBudgetWriter
}

// BudgetRepositoryWithTx extends BudgetRepositoryFacade with transaction capabilities
type BudgetRepositoryWithTx interface {
	BudgetRepositoryFacade
	TransactionManager
}
