package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	CurrencyRepo     CurrencyRepositoryFacade
	ExchangeRateRepo ExchangeRateRepositoryFacade
	BudgetRepo       BudgetRepositoryWithTx
	ExpenseRepo      ExpenseRepositoryFacade
	CategoryRepo     CategoryReader
	SettingsRepo     SettingsRepository
	SecretRepo       SecretRepository
}
