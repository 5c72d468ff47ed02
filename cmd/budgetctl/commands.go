package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/SscSPs/budget_engine/internal/core/domain"
	"github.com/SscSPs/budget_engine/internal/utils"
	"github.com/google/subcommands"
)

const dateLayout = "2006-01-02"

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return domain.DayStart(time.Now()), nil
	}
	return time.ParseInLocation(dateLayout, s, time.Local)
}

func fail(format string, args ...interface{}) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitFailure
}

type refreshRatesCmd struct {
	force bool
}

func (*refreshRatesCmd) Name() string     { return "refresh-rates" }
func (*refreshRatesCmd) Synopsis() string { return "fetch the latest exchange rates" }
func (*refreshRatesCmd) Usage() string {
	return `refresh-rates [-force]:
  Fetches latest rates if no refresh has happened today. -force fetches regardless.
`
}

func (c *refreshRatesCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "force", false, "refresh even if rates were already fetched today")
}

func (c *refreshRatesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, env, err := openEnvironment(ctx)
	if err != nil {
		return fail("%v", err)
	}
	defer env.Close()

	started := time.Now()
	if err := env.svc.Fetcher.Start(ctx); err != nil {
		return fail("refresh failed: %v", err)
	}
	if c.force && env.svc.Fetcher.LastUpdated().Before(started) {
		if _, err := env.svc.Fetcher.RefreshIfDue(ctx, true); err != nil {
			return fail("refresh failed: %v", err)
		}
	}
	fmt.Printf("rates last updated %s\n", env.svc.Fetcher.LastUpdated().Format(time.RFC3339))
	return subcommands.ExitSuccess
}

type backfillRatesCmd struct {
	date string
}

func (*backfillRatesCmd) Name() string     { return "backfill-rates" }
func (*backfillRatesCmd) Synopsis() string { return "record historical rates for one day" }
func (*backfillRatesCmd) Usage() string {
	return `backfill-rates -date YYYY-MM-DD:
  Fetches the provider's historical snapshot for the day and records it.
`
}

func (c *backfillRatesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "date", "", "day to backfill (YYYY-MM-DD)")
}

func (c *backfillRatesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.date == "" {
		fmt.Fprintln(os.Stderr, "-date is required")
		return subcommands.ExitUsageError
	}
	day, err := parseDay(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -date: %v\n", err)
		return subcommands.ExitUsageError
	}

	ctx, env, err := openEnvironment(ctx)
	if err != nil {
		return fail("%v", err)
	}
	defer env.Close()

	if err := env.svc.Fetcher.Start(ctx); err != nil {
		return fail("loading credential failed: %v", err)
	}
	n, err := env.svc.Fetcher.Backfill(ctx, day)
	if err != nil {
		return fail("backfill failed: %v", err)
	}
	fmt.Printf("recorded %d rates for %s\n", n, day.Format(dateLayout))
	return subcommands.ExitSuccess
}

type pruneRatesCmd struct{}

func (*pruneRatesCmd) Name() string     { return "prune-rates" }
func (*pruneRatesCmd) Synopsis() string { return "delete rate history past the retention window" }
func (*pruneRatesCmd) Usage() string {
	return `prune-rates:
  Deletes recorded rates older than the configured retention window.
`
}

func (*pruneRatesCmd) SetFlags(*flag.FlagSet) {}

func (*pruneRatesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, env, err := openEnvironment(ctx)
	if err != nil {
		return fail("%v", err)
	}
	defer env.Close()

	n, err := env.svc.Rates.Prune(ctx, time.Now())
	if err != nil {
		return fail("prune failed: %v", err)
	}
	fmt.Printf("pruned %d rates\n", n)
	return subcommands.ExitSuccess
}

type rateCmd struct {
	code string
	date string
}

func (*rateCmd) Name() string     { return "rate" }
func (*rateCmd) Synopsis() string { return "show the rate for a currency" }
func (*rateCmd) Usage() string {
	return `rate -code CUR [-date YYYY-MM-DD]:
  Prints the rate to the pivot currency and where it came from.
`
}

func (c *rateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.code, "code", "", "currency code")
	f.StringVar(&c.date, "date", "", "day to look up, today when empty")
}

func (c *rateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.code == "" {
		fmt.Fprintln(os.Stderr, "-code is required")
		return subcommands.ExitUsageError
	}
	day, err := parseDay(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -date: %v\n", err)
		return subcommands.ExitUsageError
	}

	ctx, env, err := openEnvironment(ctx)
	if err != nil {
		return fail("%v", err)
	}
	defer env.Close()

	q, err := env.svc.Rates.GetRate(ctx, strings.ToUpper(c.code), day)
	if err != nil {
		return fail("%s: %v", strings.ToUpper(c.code), err)
	}
	fmt.Printf("%s %s (%s, effective %s)\n", q.CurrencyCode, q.RateToPivot.String(), q.Source, q.EffectiveDate.Format(dateLayout))
	return subcommands.ExitSuccess
}

type convertCmd struct {
	amount string
	from   string
	to     string
	date   string
}

func (*convertCmd) Name() string     { return "convert" }
func (*convertCmd) Synopsis() string { return "convert an amount between currencies" }
func (*convertCmd) Usage() string {
	return `convert -amount N -from CUR -to CUR [-date YYYY-MM-DD]:
  Converts through the pivot currency using the rates in effect on the day.
`
}

func (c *convertCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "amount", "", "amount, dot or comma decimal separator")
	f.StringVar(&c.from, "from", "", "source currency code")
	f.StringVar(&c.to, "to", "", "target currency code")
	f.StringVar(&c.date, "date", "", "day whose rates to use, today when empty")
}

func (c *convertCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.amount == "" || c.from == "" || c.to == "" {
		fmt.Fprintln(os.Stderr, "-amount, -from and -to are required")
		return subcommands.ExitUsageError
	}
	amount, err := utils.ParseAmount(c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -amount: %v\n", err)
		return subcommands.ExitUsageError
	}
	day, err := parseDay(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -date: %v\n", err)
		return subcommands.ExitUsageError
	}

	ctx, env, err := openEnvironment(ctx)
	if err != nil {
		return fail("%v", err)
	}
	defer env.Close()

	to := strings.ToUpper(c.to)
	conv, err := env.svc.Converter.Convert(ctx, amount, strings.ToUpper(c.from), to, day)
	if err != nil {
		return fail("conversion failed: %v", err)
	}
	line := env.svc.Converter.Format(conv.Amount, to)
	if conv.Stale {
		line += " (stale rate)"
	}
	fmt.Println(line)
	return subcommands.ExitSuccess
}

type changeCurrencyCmd struct {
	to string
}

func (*changeCurrencyCmd) Name() string     { return "change-currency" }
func (*changeCurrencyCmd) Synopsis() string { return "switch the reporting currency and convert the ledger" }
func (*changeCurrencyCmd) Usage() string {
	return `change-currency -to CUR:
  Converts every expense and budget amount into CUR and makes it the reporting currency.
`
}

func (c *changeCurrencyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.to, "to", "", "new reporting currency code")
}

func (c *changeCurrencyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.to == "" {
		fmt.Fprintln(os.Stderr, "-to is required")
		return subcommands.ExitUsageError
	}

	ctx, env, err := openEnvironment(ctx)
	if err != nil {
		return fail("%v", err)
	}
	defer env.Close()

	res, err := env.svc.Settings.ChangeReportingCurrency(ctx, strings.ToUpper(c.to), domain.SystemActor)
	if err != nil {
		return fail("change failed: %v", err)
	}
	fmt.Printf("%s -> %s: %d expenses, %d budgets converted\n", res.From, res.To, res.ExpensesConverted, res.BudgetsConverted)
	return subcommands.ExitSuccess
}

type setCredentialCmd struct {
	credential string
}

func (*setCredentialCmd) Name() string     { return "set-credential" }
func (*setCredentialCmd) Synopsis() string { return "store the rate provider credential" }
func (*setCredentialCmd) Usage() string {
	return `set-credential [-credential ID]:
  Stores the provider credential and refreshes rates with it.
  Reads the credential from stdin when -credential is empty.
`
}

func (c *setCredentialCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.credential, "credential", "", "provider app id")
}

func (c *setCredentialCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	credential := strings.TrimSpace(c.credential)
	if credential == "" {
		if _, err := fmt.Fscanln(os.Stdin, &credential); err != nil {
			fmt.Fprintln(os.Stderr, "no credential given")
			return subcommands.ExitUsageError
		}
	}

	ctx, env, err := openEnvironment(ctx)
	if err != nil {
		return fail("%v", err)
	}
	defer env.Close()

	if err := env.svc.Fetcher.ConfigureCredential(ctx, credential); err != nil {
		return fail("storing credential failed: %v", err)
	}
	fmt.Println("credential stored")
	return subcommands.ExitSuccess
}
