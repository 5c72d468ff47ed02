// Command budgetctl runs one-off maintenance against the budget engine database:
// rate refreshes and backfills, history pruning, ad hoc conversions and
// reporting currency changes.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path"

	"github.com/SscSPs/budget_engine/internal/adapters/events"
	"github.com/SscSPs/budget_engine/internal/adapters/ratesapi"
	portsrepo "github.com/SscSPs/budget_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_engine/internal/core/ports/services"
	"github.com/SscSPs/budget_engine/internal/core/services"
	"github.com/SscSPs/budget_engine/internal/middleware"
	"github.com/SscSPs/budget_engine/internal/platform/config"
	"github.com/SscSPs/budget_engine/internal/platform/secrets"
	"github.com/SscSPs/budget_engine/internal/platform/serial"
	"github.com/SscSPs/budget_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/budget_engine/internal/repositories/database/sqlite"
	"github.com/SscSPs/budget_engine/pkg/database"
	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&refreshRatesCmd{}, "rates")
	commander.Register(&backfillRatesCmd{}, "rates")
	commander.Register(&pruneRatesCmd{}, "rates")
	commander.Register(&rateCmd{}, "rates")
	commander.Register(&convertCmd{}, "rates")
	commander.Register(&changeCurrencyCmd{}, "settings")
	commander.Register(&setCredentialCmd{}, "settings")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// environment is the wiring shared by every subcommand.
type environment struct {
	svc     *portssvc.ServiceContainer
	closers []func()
}

func (e *environment) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// openEnvironment connects to the database and builds the service container.
// The returned context carries a stderr logger for the services to use.
func openEnvironment(ctx context.Context) (context.Context, *environment, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx = middleware.WithLogger(ctx, logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		return ctx, nil, err
	}

	env := &environment{}
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
	if err != nil {
		return ctx, nil, err
	}
	env.closers = append(env.closers, func() { database.ClosePgxPool(pool) })

	var vault portsrepo.SecretRepository
	if sealer, err := secrets.NewSealer(cfg.SecretsKey); err != nil {
		logger.Warn("Credential vault unavailable", slog.String("error", err.Error()))
	} else if secretRepo, err := sqlite.NewSecretRepository(cfg.SecretsDBPath, sealer); err != nil {
		logger.Warn("Credential vault unavailable", slog.String("error", err.Error()))
	} else {
		env.closers = append(env.closers, func() { _ = secretRepo.Close() })
		vault = secretRepo
	}

	ledger := serial.NewExecutor()
	env.closers = append(env.closers, ledger.Close)

	repos := pgsql.NewRepositoryProvider(pool, vault)
	provider := ratesapi.NewClient(cfg.RatesLatestURL, cfg.RatesHistoricalURL, cfg.RatesHTTPTimeout)
	env.svc = services.NewServiceContainer(cfg, repos, provider, events.Noop{}, ledger)
	return ctx, env, nil
}
