package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/budget_engine/internal/core/domain"
	"github.com/SscSPs/budget_engine/internal/dto"
	"github.com/SscSPs/budget_engine/internal/utils"
	"github.com/shopspring/decimal"
)

func (m *budgetManager) GetBudget(ctx context.Context, budgetID string) (*domain.Budget, error) {
	return m.budgetRepo.FindBudgetByID(ctx, budgetID)
}

func (m *budgetManager) GetCurrentMonthBudget(ctx context.Context) (*domain.Budget, error) {
	month, err := m.currentMonth()
	if err != nil {
		return nil, err
	}
	return m.budgetRepo.FindBudgetByMonth(ctx, month)
}

func (m *budgetManager) ListBudgets(ctx context.Context, from time.Time) ([]domain.Budget, error) {
	budgets, err := m.budgetRepo.ListBudgetsFrom(ctx, domain.MonthStart(from))
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets in service: %w", err)
	}
	if budgets == nil {
		return []domain.Budget{}, nil
	}
	return budgets, nil
}

func (m *budgetManager) ListCategoryBudgets(ctx context.Context, budgetID string) ([]domain.CategoryBudget, error) {
	if _, err := m.budgetRepo.FindBudgetByID(ctx, budgetID); err != nil {
		return nil, err
	}
	cbs, err := m.budgetRepo.ListCategoryBudgets(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list category budgets in service: %w", err)
	}
	if cbs == nil {
		return []domain.CategoryBudget{}, nil
	}
	return cbs, nil
}

func (m *budgetManager) CalculateTotalCategoryBudget(ctx context.Context, budgetID string) (decimal.Decimal, error) {
	cbs, err := m.ListCategoryBudgets(ctx, budgetID)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.TotalCategoryBudget(cbs), nil
}

// CalculateEverythingElseAmount returns nil when the budget has no amount or is over-allocated.
func (m *budgetManager) CalculateEverythingElseAmount(ctx context.Context, budgetID string) (*decimal.Decimal, error) {
	budget, err := m.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	cbs, err := m.budgetRepo.ListCategoryBudgets(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	rest, ok := domain.EverythingElseAmount(*budget, cbs)
	if !ok {
		return nil, nil
	}
	return &rest, nil
}

func (m *budgetManager) ExpensesForBudget(ctx context.Context, budget domain.Budget) ([]domain.Expense, error) {
	expenses, err := m.expenseRepo.ListExpensesBetween(ctx, budget.AnchorMonth, domain.MonthEnd(budget.AnchorMonth))
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses of %s: %w", domain.MonthKey(budget.AnchorMonth), err)
	}
	return expenses, nil
}

func (m *budgetManager) CalculateNonBudgetedSpending(ctx context.Context, budgetID string) (decimal.Decimal, error) {
	budget, err := m.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return decimal.Zero, err
	}
	cbs, err := m.budgetRepo.ListCategoryBudgets(ctx, budgetID)
	if err != nil {
		return decimal.Zero, err
	}
	expenses, err := m.ExpensesForBudget(ctx, *budget)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.NonBudgetedSpending(expenses, cbs), nil
}

func (m *budgetManager) CalculatePercentage(spent, limit decimal.Decimal) decimal.Decimal {
	return domain.Percentage(spent, limit)
}

func (m *budgetManager) IsCurrentMonth(budget domain.Budget) bool {
	return domain.SameMonth(budget.AnchorMonth, m.now())
}

func (m *budgetManager) GetBudgetSummary(ctx context.Context, budgetID string) (*dto.BudgetSummaryResponse, error) {
	budget, err := m.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	cbs, err := m.budgetRepo.ListCategoryBudgets(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list category budgets: %w", err)
	}
	expenses, err := m.ExpensesForBudget(ctx, *budget)
	if err != nil {
		return nil, err
	}

	spent := domain.TotalSpent(expenses)
	summary := &dto.BudgetSummaryResponse{
		Budget:              dto.ToBudgetResponse(budget),
		IsCurrentMonth:      m.IsCurrentMonth(*budget),
		TotalCategoryBudget: domain.TotalCategoryBudget(cbs),
		TotalSpent:          spent,
		Percentage:          domain.Percentage(spent, budget.AmountOrZero()).Round(2),
		NonBudgetedSpending: domain.NonBudgetedSpending(expenses, cbs),
		Categories:          make([]dto.CategorySpending, 0, len(cbs)),
		FormattedTotalSpent: utils.FormatAmount(spent, budget.CurrencyCode),
	}
	if rest, ok := domain.EverythingElseAmount(*budget, cbs); ok {
		summary.EverythingElse = &rest
	}
	if budget.Amount != nil {
		summary.FormattedBudgetTotal = utils.FormatAmount(*budget.Amount, budget.CurrencyCode)
	}
	if budget.AlertThreshold != nil {
		summary.ThresholdReached = spent.GreaterThanOrEqual(*budget.AlertThreshold)
	}

	for i, resp := range dto.ToCategoryBudgetResponses(cbs) {
		categorySpent := domain.SpentInCategory(expenses, cbs[i].CategoryID)
		summary.Categories = append(summary.Categories, dto.CategorySpending{
			CategoryBudgetResponse: resp,
			Spent:                  categorySpent,
			Percentage:             domain.Percentage(categorySpent, cbs[i].Amount).Round(2),
		})
	}
	return summary, nil
}
