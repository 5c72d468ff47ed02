package pgsql

import (
	portsrepo "github.com/SscSPs/budget_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider builds every postgres-backed repository. The secret store lives
// elsewhere and is supplied by the caller.
func NewRepositoryProvider(dbPool *pgxpool.Pool, secretRepo portsrepo.SecretRepository) portsrepo.RepositoryProvider {
	expenseRepo := newPgxExpenseRepository(dbPool)

	return portsrepo.RepositoryProvider{
		CurrencyRepo:     newPgxCurrencyRepository(dbPool),
		ExchangeRateRepo: newPgxExchangeRateRepository(dbPool),
		BudgetRepo:       newPgxBudgetRepository(dbPool),
		ExpenseRepo:      expenseRepo,
		CategoryRepo:     expenseRepo,
		SettingsRepo:     newPgxSettingsRepository(dbPool),
		SecretRepo:       secretRepo,
	}
}
