package main

import (
	"context"
	"flag"
	"testing"

	"github.com/google/subcommands"
)

func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd.Execute(context.Background(), f)
}

func TestGenhash(t *testing.T) {
	if got := run(t, &genhashCmd{}, "-cost", "4", "hunter2"); got != subcommands.ExitSuccess {
		t.Fatalf("genhash exit %d", got)
	}
	if got := run(t, &genhashCmd{}); got != subcommands.ExitUsageError {
		t.Fatalf("genhash without password exit %d", got)
	}
}

func TestQuoteFixed(t *testing.T) {
	if got := run(t, &quoteCmd{}, "-fixed", "AAPL=150", "aapl"); got != subcommands.ExitSuccess {
		t.Fatalf("quote exit %d", got)
	}
	if got := run(t, &quoteCmd{}, "-fixed", "AAPL=150", "MSFT"); got != subcommands.ExitFailure {
		t.Fatalf("unknown symbol exit %d", got)
	}
	if got := run(t, &quoteCmd{}, "-fixed", "AAPL=150"); got != subcommands.ExitUsageError {
		t.Fatalf("missing symbol exit %d", got)
	}
}

func TestVerifyRequiresUser(t *testing.T) {
	if got := run(t, &verifyCmd{}, "-dsn", "postgres://unused"); got != subcommands.ExitUsageError {
		t.Fatalf("verify exit %d", got)
	}
}
