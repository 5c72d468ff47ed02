package services

import (
	"context"

	"github.com/SscSPs/budget_engine/internal/core/domain"
	"github.com/SscSPs/budget_engine/internal/dto"
)

// ReportingCurrencyProvider is the default-reporting-currency accessor.
type ReportingCurrencyProvider interface {
	// ReportingCurrency returns the configured code or apperrors.ErrNoCurrencyAvailable.
	ReportingCurrency(ctx context.Context) (string, error)
}

// CredentialProvider resolves the rate provider credential.
type CredentialProvider interface {
	// ResolveCredential returns the credential from secure storage, falling back to the
	// bundled configuration. Returns apperrors.ErrCredentialMissing when neither has one.
	ResolveCredential(ctx context.Context) (string, error)

	// StoreCredential writes a credential into secure storage.
	StoreCredential(ctx context.Context, credential string) error
}

// SettingsSvcFacade combines settings reads and the reporting currency change workflow.
type SettingsSvcFacade interface {
	ReportingCurrencyProvider
	CredentialProvider

	// ChangeReportingCurrency converts the ledger into code and records it as the reporting currency.
	ChangeReportingCurrency(ctx context.Context, code string, userID string) (*dto.LedgerConversionResult, error)
}

// ExpenseSvcFacade is the expense collaborator used for aggregation and entry.
type ExpenseSvcFacade interface {
	// RecordExpense converts the expense into the reporting currency and saves it.
	// Saving is refused when no rate can be resolved.
	RecordExpense(ctx context.Context, req dto.CreateExpenseRequest, userID string) (*domain.Expense, error)

	// ListExpenses lists expenses dated in [params.From, params.To).
	ListExpenses(ctx context.Context, params dto.ListExpensesParams) ([]domain.Expense, error)
}

// CategorySvcFacade is the read-only category lookup.
type CategorySvcFacade interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)
}
