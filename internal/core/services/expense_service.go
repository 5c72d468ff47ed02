package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/budget_engine/internal/apperrors"
	"github.com/SscSPs/budget_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_engine/internal/core/ports/services"
	"github.com/SscSPs/budget_engine/internal/dto"
	"github.com/SscSPs/budget_engine/internal/platform/serial"
	"github.com/google/uuid"
)

// expenseService records expenses in the reporting currency.
type expenseService struct {
	BaseService
	expenseRepo  portsrepo.ExpenseRepositoryFacade
	categoryRepo portsrepo.CategoryReader
	currencies   portssvc.ReportingCurrencyProvider
	converter    portssvc.CurrencyConverterSvc
	ledger       *serial.Executor
	now          func() time.Time
}

// NewExpenseService creates an expense service writing through the shared ledger executor.
func NewExpenseService(expenseRepo portsrepo.ExpenseRepositoryFacade, categoryRepo portsrepo.CategoryReader, currencies portssvc.ReportingCurrencyProvider, converter portssvc.CurrencyConverterSvc, ledger *serial.Executor) portssvc.ExpenseSvcFacade {
	return &expenseService{
		expenseRepo:  expenseRepo,
		categoryRepo: categoryRepo,
		currencies:   currencies,
		converter:    converter,
		ledger:       ledger,
		now:          time.Now,
	}
}

var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

func (s *expenseService) RecordExpense(ctx context.Context, req dto.CreateExpenseRequest, userID string) (*domain.Expense, error) {
	if !req.Amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}
	if _, err := s.categoryRepo.FindCategoryByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown category %s", apperrors.ErrValidation, req.CategoryID)
		}
		return nil, fmt.Errorf("failed to look up category: %w", err)
	}

	original := domain.NormalizeCurrencyCode(req.CurrencyCode)
	var expense domain.Expense
	var conv domain.Conversion
	err := s.ledger.Do(ctx, func(ctx context.Context) error {
		reporting, err := s.currencies.ReportingCurrency(ctx)
		if err != nil {
			return err
		}
		conv, err = s.converter.Convert(ctx, req.Amount, original, reporting, req.Date)
		if err != nil {
			s.LogError(ctx, err, "Refusing to record expense without a conversion",
				slog.String("from", original),
				slog.String("to", reporting))
			return err
		}

		expense = domain.Expense{
			ExpenseID:        uuid.NewString(),
			CategoryID:       req.CategoryID,
			Description:      req.Description,
			OriginalAmount:   req.Amount,
			OriginalCurrency: original,
			ConvertedAmount:  conv.Amount.Round(ledgerAmountScale),
			ConversionRate:   conv.Rate.Round(ledgerRateScale),
			Date:             req.Date,
			AuditFields:      domain.NewAuditFields(userID, s.now()),
		}
		if err := s.expenseRepo.SaveExpense(ctx, expense); err != nil {
			s.LogError(ctx, err, "Failed to save expense", slog.String("expense_id", expense.ExpenseID))
			return fmt.Errorf("failed to record expense: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Expense recorded",
		slog.String("expense_id", expense.ExpenseID),
		slog.Bool("stale_rate", conv.Stale))
	return &expense, nil
}

func (s *expenseService) ListExpenses(ctx context.Context, params dto.ListExpensesParams) ([]domain.Expense, error) {
	if !params.From.Before(params.To) {
		return nil, fmt.Errorf("%w: from must be before to", apperrors.ErrValidation)
	}
	expenses, err := s.expenseRepo.ListExpensesBetween(ctx, params.From, params.To)
	if err != nil {
		s.LogError(ctx, err, "Failed to list expenses")
		return nil, fmt.Errorf("failed to list expenses in service: %w", err)
	}
	if expenses == nil {
		return []domain.Expense{}, nil
	}
	return expenses, nil
}
