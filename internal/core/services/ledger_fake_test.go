package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/budget_engine/internal/apperrors"
	"github.com/SscSPs/budget_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// memoryLedger is an in-memory implementation of the repository ports.
// RunInTx restores the previous state when fn fails.
type memoryLedger struct {
	mu              sync.Mutex
	budgets         map[string]domain.Budget
	categoryBudgets map[string]domain.CategoryBudget
	expenses        map[string]domain.Expense
	categories      map[string]domain.Category
	rates           []domain.ExchangeRateRecord
	settings        map[string]string
	secrets         map[string]string

	// hooks used to inject failures or pauses
	onSaveBudget           func() error
	onUpdateCategoryBudget func() error
	onListAllExpenses      func()
	onSaveExchangeRates    func(ctx context.Context) error
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{
		budgets:         map[string]domain.Budget{},
		categoryBudgets: map[string]domain.CategoryBudget{},
		expenses:        map[string]domain.Expense{},
		categories: map[string]domain.Category{
			"food":      {CategoryID: "food", Name: "Food"},
			"transport": {CategoryID: "transport", Name: "Transport"},
			"leisure":   {CategoryID: "leisure", Name: "Leisure"},
		},
		settings: map[string]string{},
		secrets:  map[string]string{},
	}
}

type ledgerState struct {
	budgets         map[string]domain.Budget
	categoryBudgets map[string]domain.CategoryBudget
	expenses        map[string]domain.Expense
	settings        map[string]string
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (l *memoryLedger) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	saved := ledgerState{
		budgets:         copyMap(l.budgets),
		categoryBudgets: copyMap(l.categoryBudgets),
		expenses:        copyMap(l.expenses),
		settings:        copyMap(l.settings),
	}
	l.mu.Unlock()

	if err := fn(ctx); err != nil {
		l.mu.Lock()
		l.budgets = saved.budgets
		l.categoryBudgets = saved.categoryBudgets
		l.expenses = saved.expenses
		l.settings = saved.settings
		l.mu.Unlock()
		return err
	}
	return nil
}

// --- budgets ---

func (l *memoryLedger) FindBudgetByID(_ context.Context, budgetID string) (*domain.Budget, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.budgets[budgetID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &b, nil
}

func (l *memoryLedger) FindBudgetByMonth(_ context.Context, month time.Time) (*domain.Budget, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.budgets {
		if domain.SameMonth(b.AnchorMonth, month) {
			return &b, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (l *memoryLedger) sortedBudgets(keep func(domain.Budget) bool) []domain.Budget {
	var out []domain.Budget
	for _, b := range l.budgets {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AnchorMonth.Before(out[j].AnchorMonth) })
	return out
}

func (l *memoryLedger) ListBudgetsFrom(_ context.Context, month time.Time) ([]domain.Budget, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	start := domain.MonthStart(month)
	return l.sortedBudgets(func(b domain.Budget) bool { return !b.AnchorMonth.Before(start) }), nil
}

func (l *memoryLedger) ListBudgetsByCurrency(_ context.Context, currencyCode string) ([]domain.Budget, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sortedBudgets(func(b domain.Budget) bool { return b.CurrencyCode == currencyCode }), nil
}

func (l *memoryLedger) SaveBudget(_ context.Context, budget domain.Budget) error {
	if l.onSaveBudget != nil {
		if err := l.onSaveBudget(); err != nil {
			return err
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.budgets {
		if domain.SameMonth(b.AnchorMonth, budget.AnchorMonth) {
			return apperrors.ErrDuplicate
		}
	}
	l.budgets[budget.BudgetID] = budget
	return nil
}

func (l *memoryLedger) UpdateBudget(_ context.Context, budget domain.Budget) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.budgets[budget.BudgetID]; !ok {
		return apperrors.ErrNotFound
	}
	l.budgets[budget.BudgetID] = budget
	return nil
}

func (l *memoryLedger) DeleteBudgets(_ context.Context, budgetIDs []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range budgetIDs {
		delete(l.budgets, id)
	}
	return nil
}

func (l *memoryLedger) ListCategoryBudgets(_ context.Context, budgetID string) ([]domain.CategoryBudget, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.CategoryBudget
	for _, cb := range l.categoryBudgets {
		if cb.BudgetID == budgetID {
			out = append(out, cb)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}

func (l *memoryLedger) SaveCategoryBudgets(_ context.Context, categoryBudgets []domain.CategoryBudget) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, cb := range categoryBudgets {
		l.categoryBudgets[cb.CategoryBudgetID] = cb
	}
	return nil
}

func (l *memoryLedger) UpdateCategoryBudget(_ context.Context, categoryBudget domain.CategoryBudget) error {
	if l.onUpdateCategoryBudget != nil {
		if err := l.onUpdateCategoryBudget(); err != nil {
			return err
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.categoryBudgets[categoryBudget.CategoryBudgetID] = categoryBudget
	return nil
}

func (l *memoryLedger) DeleteCategoryBudgetsByBudget(_ context.Context, budgetIDs []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make(map[string]struct{}, len(budgetIDs))
	for _, id := range budgetIDs {
		ids[id] = struct{}{}
	}
	for key, cb := range l.categoryBudgets {
		if _, ok := ids[cb.BudgetID]; ok {
			delete(l.categoryBudgets, key)
		}
	}
	return nil
}

// --- expenses and categories ---

func (l *memoryLedger) ListExpensesBetween(_ context.Context, from, to time.Time) ([]domain.Expense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.Expense
	for _, e := range l.expenses {
		if !e.Date.Before(from) && e.Date.Before(to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (l *memoryLedger) ListAllExpenses(_ context.Context) ([]domain.Expense, error) {
	if l.onListAllExpenses != nil {
		l.onListAllExpenses()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Expense, 0, len(l.expenses))
	for _, e := range l.expenses {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpenseID < out[j].ExpenseID })
	return out, nil
}

func (l *memoryLedger) SaveExpense(_ context.Context, expense domain.Expense) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.expenses[expense.ExpenseID] = expense
	return nil
}

func (l *memoryLedger) UpdateConvertedAmount(_ context.Context, expenseID string, amount, rate decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.expenses[expenseID]
	if !ok {
		return apperrors.ErrNotFound
	}
	e.ConvertedAmount = amount
	e.ConversionRate = rate
	l.expenses[expenseID] = e
	return nil
}

func (l *memoryLedger) FindCategoryByID(_ context.Context, categoryID string) (*domain.Category, error) {
	c, ok := l.categories[categoryID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

func (l *memoryLedger) FindCategoriesByIDs(_ context.Context, categoryIDs []string) (map[string]domain.Category, error) {
	out := map[string]domain.Category{}
	for _, id := range categoryIDs {
		if c, ok := l.categories[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (l *memoryLedger) ListCategories(_ context.Context) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range l.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}

// --- rates ---

func rateAfter(a, b domain.ExchangeRateRecord) bool {
	if !a.EffectiveDate.Equal(b.EffectiveDate) {
		return a.EffectiveDate.After(b.EffectiveDate)
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func (l *memoryLedger) latestRate(code string, keep func(domain.ExchangeRateRecord) bool) (*domain.ExchangeRateRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var best *domain.ExchangeRateRecord
	for i := range l.rates {
		r := l.rates[i]
		if r.CurrencyCode != code || !keep(r) {
			continue
		}
		if best == nil || rateAfter(r, *best) {
			best = &r
		}
	}
	if best == nil {
		return nil, apperrors.ErrNotFound
	}
	return best, nil
}

func (l *memoryLedger) FindLatestRateBefore(_ context.Context, currencyCode string, before time.Time) (*domain.ExchangeRateRecord, error) {
	return l.latestRate(currencyCode, func(r domain.ExchangeRateRecord) bool { return r.EffectiveDate.Before(before) })
}

func (l *memoryLedger) FindLatestRate(_ context.Context, currencyCode string) (*domain.ExchangeRateRecord, error) {
	return l.latestRate(currencyCode, func(domain.ExchangeRateRecord) bool { return true })
}

func (l *memoryLedger) ListRateHistory(_ context.Context, currencyCode string, cursor *domain.RateCursor, limit int) ([]domain.ExchangeRateRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.ExchangeRateRecord
	for _, r := range l.rates {
		if r.CurrencyCode != currencyCode {
			continue
		}
		if cursor != nil && !rateAfter(domain.ExchangeRateRecord{EffectiveDate: cursor.EffectiveDate, CreatedAt: cursor.CreatedAt}, r) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return rateAfter(out[i], out[j]) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (l *memoryLedger) SaveExchangeRates(ctx context.Context, records []domain.ExchangeRateRecord) error {
	if l.onSaveExchangeRates != nil {
		if err := l.onSaveExchangeRates(ctx); err != nil {
			return err
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rates = append(l.rates, records...)
	return nil
}

func (l *memoryLedger) DeleteExchangeRatesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.rates[:0]
	var deleted int64
	for _, r := range l.rates {
		if r.EffectiveDate.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	l.rates = kept
	return deleted, nil
}

func (l *memoryLedger) addRate(code string, rate string, effective time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rates = append(l.rates, domain.ExchangeRateRecord{
		ExchangeRateID: code + effective.Format(time.RFC3339Nano),
		CurrencyCode:   code,
		EffectiveDate:  effective,
		RateToPivot:    decimal.RequireFromString(rate),
		CreatedAt:      effective,
	})
}

// --- settings and secrets ---

func (l *memoryLedger) GetSetting(_ context.Context, key string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.settings[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return v, nil
}

func (l *memoryLedger) SetSetting(_ context.Context, key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.settings[key] = value
	return nil
}

func (l *memoryLedger) GetSecret(_ context.Context, name string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.secrets[name]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return v, nil
}

func (l *memoryLedger) PutSecret(_ context.Context, name, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.secrets[name] = value
	return nil
}

// fixedCurrency is a ReportingCurrencyProvider returning a constant.
type fixedCurrency struct {
	code string
	err  error
}

func (f fixedCurrency) ReportingCurrency(context.Context) (string, error) {
	return f.code, f.err
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
