package services

import (
	portsevents "github.com/SscSPs/budget_engine/internal/core/ports/events"
	"github.com/SscSPs/budget_engine/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/budget_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_engine/internal/core/ports/services"
	"github.com/SscSPs/budget_engine/internal/platform/config"
	"github.com/SscSPs/budget_engine/internal/platform/serial"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// Every ledger writer shares the given executor.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, provider providers.RateProvider, publisher portsevents.Publisher, ledger *serial.Executor) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Currency = NewCurrencyService(repos.CurrencyRepo)
	container.Category = NewCategoryService(repos.CategoryRepo)

	// Rates first since conversion and budgets depend on them
	container.Rates = NewRateStore(repos.ExchangeRateRepo, cfg.RatesPivotCurrency, WithRetention(cfg.RatesRetention))
	container.Converter = NewCurrencyConverter(
		container.Rates,
		repos.BudgetRepo,
		repos.ExpenseRepo,
		ledger,
		WithConverterEvents(publisher),
	)

	settingsOptions := []SettingsOption{
		WithDefaultCurrency(cfg.DefaultCurrency),
		WithFallbackConfig(cfg.RatesFallbackConfig),
	}
	if repos.SecretRepo != nil {
		settingsOptions = append(settingsOptions, WithSecretRepository(repos.SecretRepo))
	}
	container.Settings = NewSettingsService(
		repos.SettingsRepo,
		repos.CurrencyRepo,
		repos.BudgetRepo,
		container.Converter,
		ledger,
		settingsOptions...,
	)

	container.Fetcher = NewRateFetcher(
		provider,
		container.Rates,
		container.Settings,
		repos.SettingsRepo,
		WithFetcherEvents(publisher),
	)

	container.Budget = NewBudgetManager(
		repos.BudgetRepo,
		repos.ExpenseRepo,
		repos.CategoryRepo,
		container.Settings,
		ledger,
		WithHorizon(cfg.BudgetHorizonMonths),
		WithBudgetEvents(publisher),
	)
	container.Expense = NewExpenseService(
		repos.ExpenseRepo,
		repos.CategoryRepo,
		container.Settings,
		container.Converter,
		ledger,
	)

	return container
}
