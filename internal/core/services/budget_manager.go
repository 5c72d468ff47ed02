package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/SscSPs/budget_engine/internal/apperrors"
	"github.com/SscSPs/budget_engine/internal/core/domain"
	portsevents "github.com/SscSPs/budget_engine/internal/core/ports/events"
	portsrepo "github.com/SscSPs/budget_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_engine/internal/core/ports/services"
	"github.com/SscSPs/budget_engine/internal/dto"
	"github.com/SscSPs/budget_engine/internal/platform/serial"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultBudgetHorizon is the number of months kept ahead of a source budget.
const DefaultBudgetHorizon = 6

// budgetManager owns the monthly budget chain. Mutations are serialised through the ledger
// executor and guarded by a non-reentrant busy flag.
type budgetManager struct {
	BaseService
	budgetRepo   portsrepo.BudgetRepositoryWithTx
	expenseRepo  portsrepo.ExpenseReader
	categoryRepo portsrepo.CategoryReader
	currencies   portssvc.ReportingCurrencyProvider
	ledger       *serial.Executor
	horizon      int
	now          func() time.Time
	busy         atomic.Bool
}

// BudgetOption is a functional option for configuring the budget manager
type BudgetOption func(*budgetManager)

// WithHorizon sets how many months ahead budgets are propagated.
func WithHorizon(months int) BudgetOption {
	return func(m *budgetManager) {
		if months > 0 {
			m.horizon = months
		}
	}
}

// WithBudgetClock overrides the clock that decides the current month.
func WithBudgetClock(now func() time.Time) BudgetOption {
	return func(m *budgetManager) {
		m.now = now
	}
}

// WithBudgetEvents sets the publisher notified after each committed mutation.
func WithBudgetEvents(publisher portsevents.Publisher) BudgetOption {
	return func(m *budgetManager) {
		m.Events = publisher
	}
}

// NewBudgetManager creates a budget manager. ledger must be the executor shared with every
// other ledger writer.
func NewBudgetManager(budgetRepo portsrepo.BudgetRepositoryWithTx, expenseRepo portsrepo.ExpenseReader, categoryRepo portsrepo.CategoryReader, currencies portssvc.ReportingCurrencyProvider, ledger *serial.Executor, options ...BudgetOption) portssvc.BudgetSvcFacade {
	m := &budgetManager{
		budgetRepo:   budgetRepo,
		expenseRepo:  expenseRepo,
		categoryRepo: categoryRepo,
		currencies:   currencies,
		ledger:       ledger,
		horizon:      DefaultBudgetHorizon,
		now:          time.Now,
	}
	for _, option := range options {
		option(m)
	}
	return m
}

var _ portssvc.BudgetSvcFacade = (*budgetManager)(nil)

// mutate runs fn in one transaction on the ledger executor. A second call while one is
// running fails with ErrOperationInProgress.
func (m *budgetManager) mutate(ctx context.Context, fn func(ctx context.Context) error) error {
	if !m.busy.CompareAndSwap(false, true) {
		return apperrors.ErrOperationInProgress
	}
	defer m.busy.Store(false)

	return m.ledger.Do(ctx, func(ctx context.Context) error {
		return m.budgetRepo.RunInTx(ctx, fn)
	})
}

func (m *budgetManager) currentMonth() (time.Time, error) {
	now := m.now()
	if now.IsZero() {
		return time.Time{}, apperrors.ErrInvalidDate
	}
	return domain.MonthStart(now), nil
}

func (m *budgetManager) event(t domain.EventType, budget *domain.Budget, userID string) domain.Event {
	event := domain.NewEvent(t, m.now())
	event.Attributes = map[string]any{"actor": userID}
	if budget != nil {
		event.BudgetID = budget.BudgetID
		event.Month = domain.MonthKey(budget.AnchorMonth)
	}
	return event
}

func validateThreshold(threshold *decimal.Decimal, amount *decimal.Decimal) error {
	if threshold == nil {
		return nil
	}
	if !threshold.IsPositive() || amount == nil || threshold.GreaterThan(*amount) {
		return apperrors.ErrInvalidThreshold
	}
	return nil
}

func (m *budgetManager) CreateBudget(ctx context.Context, req dto.CreateBudgetRequest, userID string) (*domain.Budget, error) {
	if req.Amount != nil && !req.Amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}
	if err := validateThreshold(req.AlertThreshold, req.Amount); err != nil {
		return nil, err
	}

	month, err := m.currentMonth()
	if err != nil {
		return nil, err
	}

	var budget domain.Budget
	var future []domain.Budget
	err = m.mutate(ctx, func(ctx context.Context) error {
		_, err := m.budgetRepo.FindBudgetByMonth(ctx, month)
		if err == nil {
			return apperrors.ErrBudgetExistsForCurrentMonth
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		currency, err := m.currencies.ReportingCurrency(ctx)
		if err != nil {
			return err
		}
		budget = domain.Budget{
			BudgetID:       uuid.NewString(),
			AnchorMonth:    month,
			Amount:         req.Amount,
			CurrencyCode:   currency,
			AlertThreshold: req.AlertThreshold,
			AuditFields:    domain.NewAuditFields(userID, m.now()),
		}

		if err := m.budgetRepo.SaveBudget(ctx, budget); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				return apperrors.ErrBudgetExistsForCurrentMonth
			}
			return err
		}

		future, err = m.propagate(ctx, budget, userID)
		return err
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrBudgetExistsForCurrentMonth) && !errors.Is(err, apperrors.ErrOperationInProgress) && !errors.Is(err, apperrors.ErrNoCurrencyAvailable) {
			m.LogError(ctx, err, "Failed to create budget", slog.String("month", domain.MonthKey(month)))
		}
		return nil, err
	}

	m.LogInfo(ctx, "Budget created",
		slog.String("budget_id", budget.BudgetID),
		slog.String("month", domain.MonthKey(month)),
		slog.Int("future_created", len(future)))
	event := m.event(domain.EventBudgetCreated, &budget, userID)
	event.Attributes["futureCreated"] = len(future)
	m.Publish(ctx, event)
	return &budget, nil
}

// propagate creates the missing budgets of the horizon after source, deep-copying its
// category budgets. Months that already have a budget are left untouched.
func (m *budgetManager) propagate(ctx context.Context, source domain.Budget, userID string) ([]domain.Budget, error) {
	existing, err := m.budgetRepo.ListBudgetsFrom(ctx, domain.AddMonths(source.AnchorMonth, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to list future budgets: %w", err)
	}
	taken := make(map[string]struct{}, len(existing))
	for _, b := range existing {
		taken[domain.MonthKey(b.AnchorMonth)] = struct{}{}
	}

	cbs, err := m.budgetRepo.ListCategoryBudgets(ctx, source.BudgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list category budgets: %w", err)
	}

	now := m.now()
	created := []domain.Budget{}
	for i := 1; i <= m.horizon; i++ {
		month := domain.AddMonths(source.AnchorMonth, i)
		if _, ok := taken[domain.MonthKey(month)]; ok {
			continue
		}

		next := domain.Budget{
			BudgetID:       uuid.NewString(),
			AnchorMonth:    month,
			Amount:         copyDecimal(source.Amount),
			CurrencyCode:   source.CurrencyCode,
			AlertThreshold: copyDecimal(source.AlertThreshold),
			AuditFields:    domain.NewAuditFields(userID, now),
		}
		if err := m.budgetRepo.SaveBudget(ctx, next); err != nil {
			return nil, fmt.Errorf("failed to save budget for %s: %w", domain.MonthKey(month), err)
		}

		if len(cbs) > 0 {
			copies := make([]domain.CategoryBudget, len(cbs))
			for j, cb := range cbs {
				copies[j] = domain.CategoryBudget{
					CategoryBudgetID: uuid.NewString(),
					BudgetID:         next.BudgetID,
					CategoryID:       cb.CategoryID,
					CategoryName:     cb.CategoryName,
					Amount:           cb.Amount,
					CurrencyCode:     cb.CurrencyCode,
					Year:             month.Year(),
					Month:            int(month.Month()),
					AuditFields:      domain.NewAuditFields(userID, now),
				}
			}
			if err := m.budgetRepo.SaveCategoryBudgets(ctx, copies); err != nil {
				return nil, fmt.Errorf("failed to copy category budgets to %s: %w", domain.MonthKey(month), err)
			}
		}
		created = append(created, next)
	}
	return created, nil
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func (m *budgetManager) CreateFutureBudgets(ctx context.Context, sourceBudgetID string, userID string) ([]domain.Budget, error) {
	var (
		source  *domain.Budget
		created []domain.Budget
	)
	err := m.mutate(ctx, func(ctx context.Context) error {
		var err error
		source, err = m.budgetRepo.FindBudgetByID(ctx, sourceBudgetID)
		if err != nil {
			return err
		}
		created, err = m.propagate(ctx, *source, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.LogInfo(ctx, "Future budgets created",
		slog.String("source_budget_id", sourceBudgetID),
		slog.Int("created", len(created)))
	if len(created) > 0 {
		event := m.event(domain.EventFutureBudgetsCreated, source, userID)
		event.Attributes["created"] = len(created)
		m.Publish(ctx, event)
	}
	return created, nil
}

func (m *budgetManager) UpdateBudget(ctx context.Context, budgetID string, req dto.UpdateBudgetRequest, userID string) (*domain.Budget, error) {
	if !req.Amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}
	if err := validateThreshold(req.AlertThreshold, &req.Amount); err != nil {
		return nil, err
	}

	var target *domain.Budget
	cascaded := 0
	err := m.mutate(ctx, func(ctx context.Context) error {
		var err error
		target, err = m.budgetRepo.FindBudgetByID(ctx, budgetID)
		if err != nil {
			return err
		}

		now := m.now()
		apply := func(b *domain.Budget) {
			b.Amount = copyDecimal(&req.Amount)
			b.AlertThreshold = copyDecimal(req.AlertThreshold)
			b.Touch(userID, now)
		}

		apply(target)
		if err := m.budgetRepo.UpdateBudget(ctx, *target); err != nil {
			return err
		}

		// Every later month is forced to the same values, including independently edited ones.
		later, err := m.budgetRepo.ListBudgetsFrom(ctx, domain.AddMonths(target.AnchorMonth, 1))
		if err != nil {
			return err
		}
		for i := range later {
			apply(&later[i])
			if err := m.budgetRepo.UpdateBudget(ctx, later[i]); err != nil {
				return err
			}
		}
		cascaded = len(later)
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.LogInfo(ctx, "Budget updated",
		slog.String("budget_id", budgetID),
		slog.Int("cascaded", cascaded))
	event := m.event(domain.EventBudgetUpdated, target, userID)
	event.Attributes["cascaded"] = cascaded
	m.Publish(ctx, event)
	return target, nil
}

func (m *budgetManager) DeleteBudget(ctx context.Context, budgetID string, userID string) ([]string, error) {
	var (
		target  *domain.Budget
		deleted []string
	)
	err := m.mutate(ctx, func(ctx context.Context) error {
		var err error
		target, err = m.budgetRepo.FindBudgetByID(ctx, budgetID)
		if err != nil {
			return err
		}

		chain, err := m.budgetRepo.ListBudgetsFrom(ctx, target.AnchorMonth)
		if err != nil {
			return err
		}
		ids := make([]string, len(chain))
		for i, b := range chain {
			ids[i] = b.BudgetID
		}

		if err := m.budgetRepo.DeleteCategoryBudgetsByBudget(ctx, ids); err != nil {
			return err
		}
		if err := m.budgetRepo.DeleteBudgets(ctx, ids); err != nil {
			return err
		}
		deleted = ids
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.LogInfo(ctx, "Budgets deleted",
		slog.String("budget_id", budgetID),
		slog.Int("deleted", len(deleted)))
	event := m.event(domain.EventBudgetDeleted, target, userID)
	event.Attributes["deleted"] = deleted
	m.Publish(ctx, event)
	return deleted, nil
}

func (m *budgetManager) SaveCategoryBudgets(ctx context.Context, budgetID string, req dto.SaveCategoryBudgetsRequest, userID string) ([]domain.CategoryBudget, error) {
	allocations := req.ToDomainAllocations()
	ids := make([]string, 0, len(allocations))
	seen := make(map[string]struct{}, len(allocations))
	for _, a := range allocations {
		if !a.Amount.IsPositive() {
			return nil, apperrors.ErrInvalidAmount
		}
		if _, dup := seen[a.CategoryID]; dup {
			return nil, fmt.Errorf("%w: category %s allocated twice", apperrors.ErrValidation, a.CategoryID)
		}
		seen[a.CategoryID] = struct{}{}
		ids = append(ids, a.CategoryID)
	}

	categories, err := m.categoryRepo.FindCategoriesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to look up categories: %w", err)
	}
	for _, id := range ids {
		if _, ok := categories[id]; !ok {
			return nil, fmt.Errorf("%w: unknown category %s", apperrors.ErrValidation, id)
		}
	}

	var (
		target *domain.Budget
		saved  []domain.CategoryBudget
	)
	err = m.mutate(ctx, func(ctx context.Context) error {
		var err error
		target, err = m.budgetRepo.FindBudgetByID(ctx, budgetID)
		if err != nil {
			return err
		}

		chain, err := m.budgetRepo.ListBudgetsFrom(ctx, target.AnchorMonth)
		if err != nil {
			return err
		}
		chainIDs := make([]string, len(chain))
		for i, b := range chain {
			chainIDs[i] = b.BudgetID
		}
		if err := m.budgetRepo.DeleteCategoryBudgetsByBudget(ctx, chainIDs); err != nil {
			return err
		}

		now := m.now()
		var all []domain.CategoryBudget
		for _, b := range chain {
			for _, a := range allocations {
				cb := domain.CategoryBudget{
					CategoryBudgetID: uuid.NewString(),
					BudgetID:         b.BudgetID,
					CategoryID:       a.CategoryID,
					CategoryName:     categories[a.CategoryID].Name,
					Amount:           a.Amount,
					CurrencyCode:     b.CurrencyCode,
					Year:             b.AnchorMonth.Year(),
					Month:            int(b.AnchorMonth.Month()),
					AuditFields:      domain.NewAuditFields(userID, now),
				}
				all = append(all, cb)
				if b.BudgetID == target.BudgetID {
					saved = append(saved, cb)
				}
			}
		}
		if len(all) == 0 {
			return nil
		}
		return m.budgetRepo.SaveCategoryBudgets(ctx, all)
	})
	if err != nil {
		return nil, err
	}

	m.LogInfo(ctx, "Category budgets saved",
		slog.String("budget_id", budgetID),
		slog.Int("allocations", len(allocations)))
	event := m.event(domain.EventCategoryBudgetsSaved, target, userID)
	event.Attributes["allocations"] = len(allocations)
	m.Publish(ctx, event)
	if saved == nil {
		saved = []domain.CategoryBudget{}
	}
	return saved, nil
}

func (m *budgetManager) ReconcileBudgetAmount(ctx context.Context, budgetID string, userID string) (*domain.Budget, error) {
	var (
		target *domain.Budget
		raised bool
	)
	err := m.mutate(ctx, func(ctx context.Context) error {
		var err error
		target, err = m.budgetRepo.FindBudgetByID(ctx, budgetID)
		if err != nil {
			return err
		}
		cbs, err := m.budgetRepo.ListCategoryBudgets(ctx, budgetID)
		if err != nil {
			return err
		}

		// The total only ever grows; a larger user-set total keeps its remainder.
		sum := domain.TotalCategoryBudget(cbs)
		if !sum.GreaterThan(target.AmountOrZero()) {
			return nil
		}
		target.Amount = &sum
		target.Touch(userID, m.now())
		raised = true
		return m.budgetRepo.UpdateBudget(ctx, *target)
	})
	if err != nil {
		return nil, err
	}

	if raised {
		m.LogInfo(ctx, "Budget amount raised to category total",
			slog.String("budget_id", budgetID),
			slog.String("amount", target.Amount.String()))
		m.Publish(ctx, m.event(domain.EventBudgetReconciled, target, userID))
	}
	return target, nil
}
