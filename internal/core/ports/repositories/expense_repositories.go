package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/budget_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExpenseReader defines read operations for expenses.
type ExpenseReader interface {
	// ListExpensesBetween lists expenses dated in [from, to).
	ListExpensesBetween(ctx context.Context, from, to time.Time) ([]domain.Expense, error)

	// ListAllExpenses lists every expense in the ledger.
	ListAllExpenses(ctx context.Context) ([]domain.Expense, error)
}

// ExpenseWriter defines write operations for expenses.
type ExpenseWriter interface {
	// SaveExpense inserts an expense.
	SaveExpense(ctx context.Context, expense domain.Expense) error

	// UpdateConvertedAmount re-stamps the converted amount and applied rate of an expense.
	UpdateConvertedAmount(ctx context.Context, expenseID string, amount, rate decimal.Decimal) error
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
}
