package services

import (
	"context"
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
	"github.com/SscSPs/budget_engine/internal/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	ledgerAmountScale = 4
	ledgerRateScale   = 12
)

// currencyConverter triangulates conversions through the pivot currency and re-stamps
// the ledger when the reporting currency changes.
type currencyConverter struct {
	BaseService
	rates       portssvc.RateReaderSvc
	budgetRepo  portsrepo.BudgetRepositoryWithTx
	expenseRepo portsrepo.ExpenseRepositoryFacade
	ledger      *serial.Executor
	now         func() time.Time
	busy        atomic.Bool
}

// ConverterOption is a functional option for configuring the currency converter
type ConverterOption func(*currencyConverter)

// WithConverterEvents sets the publisher notified after a ledger conversion commits.
func WithConverterEvents(publisher portsevents.Publisher) ConverterOption {
	return func(c *currencyConverter) {
		c.Events = publisher
	}
}

// WithConverterClock overrides the clock used to stamp audit fields and events.
func WithConverterClock(now func() time.Time) ConverterOption {
	return func(c *currencyConverter) {
		c.now = now
	}
}

// NewCurrencyConverter creates a converter. ledger must be the executor shared with every
// other ledger writer.
func NewCurrencyConverter(rates portssvc.RateReaderSvc, budgetRepo portsrepo.BudgetRepositoryWithTx, expenseRepo portsrepo.ExpenseRepositoryFacade, ledger *serial.Executor, options ...ConverterOption) portssvc.CurrencyConverterSvc {
	c := &currencyConverter{
		rates:       rates,
		budgetRepo:  budgetRepo,
		expenseRepo: expenseRepo,
		ledger:      ledger,
		now:         time.Now,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

var _ portssvc.CurrencyConverterSvc = (*currencyConverter)(nil)

func (c *currencyConverter) Convert(ctx context.Context, amount decimal.Decimal, from, to string, on time.Time) (domain.Conversion, error) {
	from = domain.NormalizeCurrencyCode(from)
	to = domain.NormalizeCurrencyCode(to)
	if from == to {
		return domain.Conversion{Amount: amount, Rate: decimal.NewFromInt(1)}, nil
	}

	var rateFrom, rateTo domain.RateQuote
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rateFrom, err = c.rates.GetRate(gctx, from, on)
		return err
	})
	g.Go(func() error {
		var err error
		rateTo, err = c.rates.GetRate(gctx, to, on)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Conversion{}, err
	}

	inPivot := amount.Div(rateFrom.RateToPivot)
	return domain.Conversion{
		Amount: inPivot.Mul(rateTo.RateToPivot),
		Rate:   rateTo.RateToPivot.Div(rateFrom.RateToPivot),
		Stale:  rateFrom.Stale() || rateTo.Stale(),
	}, nil
}

func (c *currencyConverter) Format(amount decimal.Decimal, currencyCode string) string {
	return utils.FormatAmount(amount, currencyCode)
}

type stagedExpense struct {
	expenseID string
	amount    decimal.Decimal
	rate      decimal.Decimal
}

type stagedLedger struct {
	expenses        []stagedExpense
	budgets         []domain.Budget
	categoryBudgets []domain.CategoryBudget
	staleRates      int
}

func (c *currencyConverter) ConvertLedger(ctx context.Context, from, to string) (*dto.LedgerConversionResult, error) {
	from = domain.NormalizeCurrencyCode(from)
	to = domain.NormalizeCurrencyCode(to)
	if len(from) != 3 || len(to) != 3 {
		return nil, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}

	result := &dto.LedgerConversionResult{From: from, To: to}
	if from == to {
		return result, nil
	}

	if !c.busy.CompareAndSwap(false, true) {
		return nil, apperrors.ErrOperationInProgress
	}
	defer c.busy.Store(false)

	err := c.ledger.Do(ctx, func(ctx context.Context) error {
		staged, err := c.stageLedger(ctx, from, to)
		if err != nil {
			return err
		}

		err = c.budgetRepo.RunInTx(ctx, func(ctx context.Context) error {
			for _, e := range staged.expenses {
				if err := c.expenseRepo.UpdateConvertedAmount(ctx, e.expenseID, e.amount, e.rate); err != nil {
					return fmt.Errorf("failed to update expense %s: %w", e.expenseID, err)
				}
			}
			for _, b := range staged.budgets {
				if err := c.budgetRepo.UpdateBudget(ctx, b); err != nil {
					return fmt.Errorf("failed to update budget %s: %w", b.BudgetID, err)
				}
			}
			for _, cb := range staged.categoryBudgets {
				if err := c.budgetRepo.UpdateCategoryBudget(ctx, cb); err != nil {
					return fmt.Errorf("failed to update category budget %s: %w", cb.CategoryBudgetID, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		result.ExpensesConverted = len(staged.expenses)
		result.BudgetsConverted = len(staged.budgets)
		result.CategoryBudgetsConverted = len(staged.categoryBudgets)
		result.StaleRatesUsed = staged.staleRates
		return nil
	})
	if err != nil {
		c.LogError(ctx, err, "Ledger conversion failed",
			slog.String("from", from),
			slog.String("to", to))
		return nil, err
	}

	c.LogInfo(ctx, "Ledger converted",
		slog.String("from", from),
		slog.String("to", to),
		slog.Int("expenses", result.ExpensesConverted),
		slog.Int("budgets", result.BudgetsConverted),
		slog.Int("category_budgets", result.CategoryBudgetsConverted),
		slog.Int("stale_rates", result.StaleRatesUsed))

	event := domain.NewEvent(domain.EventLedgerConverted, c.now())
	event.Attributes = map[string]any{
		"from":     from,
		"to":       to,
		"expenses": result.ExpensesConverted,
		"budgets":  result.BudgetsConverted,
	}
	c.Publish(ctx, event)
	return result, nil
}

// stageLedger computes every new value in memory. Nothing is written here, so a missing
// rate aborts the conversion before any row changes.
func (c *currencyConverter) stageLedger(ctx context.Context, from, to string) (*stagedLedger, error) {
	staged := &stagedLedger{}
	now := c.now()
	actor := domain.SystemActor

	expenses, err := c.expenseRepo.ListAllExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	for _, e := range expenses {
		var amount, rate decimal.Decimal
		if e.OriginalCurrency == to {
			amount, rate = e.OriginalAmount, decimal.NewFromInt(1)
		} else {
			conv, err := c.Convert(ctx, e.OriginalAmount, e.OriginalCurrency, to, e.Date)
			if err != nil {
				return nil, fmt.Errorf("failed to convert expense %s: %w", e.ExpenseID, err)
			}
			if conv.Stale {
				staged.staleRates++
			}
			amount, rate = conv.Amount, conv.Rate
		}
		staged.expenses = append(staged.expenses, stagedExpense{
			expenseID: e.ExpenseID,
			amount:    amount.Round(ledgerAmountScale),
			rate:      rate.Round(ledgerRateScale),
		})
	}

	// Only budgets still stamped with the old currency are touched, so a repeated call is a no-op.
	budgets, err := c.budgetRepo.ListBudgetsByCurrency(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	for _, b := range budgets {
		if b.CurrencyCode != from {
			continue
		}
		if b.Amount != nil {
			converted, stale, err := c.convertOn(ctx, *b.Amount, from, to, b.AnchorMonth)
			if err != nil {
				return nil, fmt.Errorf("failed to convert budget %s: %w", b.BudgetID, err)
			}
			if stale {
				staged.staleRates++
			}
			c.LogDebug(ctx, "Budget re-stamped",
				slog.String("budget_id", b.BudgetID),
				slog.String("month", domain.MonthKey(b.AnchorMonth)),
				slog.String("old_amount", c.Format(*b.Amount, from)),
				slog.String("new_amount", c.Format(converted, to)))
			b.Amount = &converted
		}
		if b.AlertThreshold != nil {
			converted, _, err := c.convertOn(ctx, *b.AlertThreshold, from, to, b.AnchorMonth)
			if err != nil {
				return nil, fmt.Errorf("failed to convert budget threshold %s: %w", b.BudgetID, err)
			}
			b.AlertThreshold = &converted
		}
		b.CurrencyCode = to
		b.Touch(actor, now)
		staged.budgets = append(staged.budgets, b)

		cbs, err := c.budgetRepo.ListCategoryBudgets(ctx, b.BudgetID)
		if err != nil {
			return nil, fmt.Errorf("failed to list category budgets of %s: %w", b.BudgetID, err)
		}
		for _, cb := range cbs {
			if cb.CurrencyCode != from {
				continue
			}
			converted, _, err := c.convertOn(ctx, cb.Amount, from, to, b.AnchorMonth)
			if err != nil {
				return nil, fmt.Errorf("failed to convert category budget %s: %w", cb.CategoryBudgetID, err)
			}
			cb.Amount = converted
			cb.CurrencyCode = to
			cb.Touch(actor, now)
			staged.categoryBudgets = append(staged.categoryBudgets, cb)
		}
	}

	return staged, nil
}

func (c *currencyConverter) convertOn(ctx context.Context, amount decimal.Decimal, from, to string, on time.Time) (decimal.Decimal, bool, error) {
	conv, err := c.Convert(ctx, amount, from, to, on)
	if err != nil {
		return decimal.Zero, false, err
	}
	return conv.Amount.Round(ledgerAmountScale), conv.Stale, nil
}
