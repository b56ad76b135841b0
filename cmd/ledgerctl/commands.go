package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"
	"golang.org/x/crypto/bcrypt"

	"lv-papertrade/internal/db"
	"lv-papertrade/internal/ledger"
	"lv-papertrade/internal/quotes"
	"lv-papertrade/internal/usd"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

type migrateCmd struct {
	dsn string
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply the ledger schema" }
func (*migrateCmd) Usage() string {
	return `ledgerctl migrate [-dsn <postgres dsn>]

  Creates the users and transactions tables if they do not exist.
`
}

func (c *migrateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dsn, "dsn", os.Getenv("DB_DSN"), "Postgres connection string (defaults to $DB_DSN).")
}

func (c *migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	pool, err := db.NewPool(ctx, c.dsn)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println("schema applied")
	return subcommands.ExitSuccess
}

type verifyCmd struct {
	dsn string
}

func (*verifyCmd) Name() string     { return "verify" }
func (*verifyCmd) Synopsis() string { return "replay a user's ledger and check hashes and cash" }
func (*verifyCmd) Usage() string {
	return `ledgerctl verify [-dsn <postgres dsn>] <user-id>...

  Walks each user's transaction hash chain, re-derives cash from the
  starting balance and compares it with the stored balance. Exits non-zero
  on the first broken link or drift.
`
}

func (c *verifyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dsn, "dsn", os.Getenv("DB_DSN"), "Postgres connection string (defaults to $DB_DSN).")
}

func (c *verifyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "verify requires at least one user id")
		return subcommands.ExitUsageError
	}
	pool, err := db.NewPool(ctx, c.dsn)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer pool.Close()
	store := ledger.NewPGStore(pool)

	status := subcommands.ExitSuccess
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, userID := range f.Args() {
		report, err := ledger.Verify(ctx, store, userID)
		if err != nil {
			var integrity *ledger.IntegrityError
			if errors.As(err, &integrity) {
				fmt.Fprintf(os.Stderr, "%s: ledger broken: %v\n", userID, err)
			} else {
				fmt.Fprintf(os.Stderr, "%s: %v\n", userID, err)
			}
			status = subcommands.ExitFailure
			continue
		}
		_ = enc.Encode(report)
	}
	return status
}

type quoteCmd struct {
	baseURL string
	apiKey  string
	fixed   string
	timeout time.Duration
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "look up the current price of a symbol" }
func (*quoteCmd) Usage() string {
	return `ledgerctl quote [-url <base url>] [-key <api key>] [-fixed <SYM=price,...>] <symbol>
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.baseURL, "url", envOr("QUOTE_API_URL", "https://cloud.iexapis.com"), "Quote API base URL.")
	f.StringVar(&c.apiKey, "key", os.Getenv("QUOTE_API_KEY"), "Quote API key (defaults to $QUOTE_API_KEY).")
	f.StringVar(&c.fixed, "fixed", os.Getenv("QUOTE_FIXED_PRICES"), "Serve these prices instead of calling the API.")
	f.DurationVar(&c.timeout, "timeout", 3*time.Second, "Request timeout.")
}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "quote requires exactly one symbol")
		return subcommands.ExitUsageError
	}
	var provider quotes.Provider
	if c.fixed != "" {
		fixed, err := quotes.ParseFixed(c.fixed)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
		provider = fixed
	} else {
		provider = quotes.NewHTTPProvider(quotes.HTTPConfig{BaseURL: c.baseURL, APIKey: c.apiKey, Timeout: c.timeout})
	}
	q, err := quotes.Resolve(ctx, provider, f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s\t%s\t%s\n", q.Symbol, usd.Format(q.Price), q.Name)
	return subcommands.ExitSuccess
}

type genhashCmd struct {
	cost int
}

func (*genhashCmd) Name() string     { return "genhash" }
func (*genhashCmd) Synopsis() string { return "print a bcrypt hash for a password" }
func (*genhashCmd) Usage() string {
	return `ledgerctl genhash [-cost <n>] <password>

  Useful for seeding users directly in the database.
`
}

func (c *genhashCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.cost, "cost", bcrypt.DefaultCost, "bcrypt cost.")
}

func (c *genhashCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 || f.Arg(0) == "" {
		fmt.Fprintln(os.Stderr, "genhash requires a password")
		return subcommands.ExitUsageError
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(f.Arg(0)), c.cost)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println(string(hash))
	return subcommands.ExitSuccess
}
