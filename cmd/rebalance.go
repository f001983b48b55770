package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"stockfolio"
)

type rebalanceCmd struct {
	portfolio string
	date      string
	weights   string
	fee       string
}

func (*rebalanceCmd) Name() string     { return "rebalance" }
func (*rebalanceCmd) Synopsis() string { return "trade the portfolio towards target weights" }
func (*rebalanceCmd) Usage() string {
	return `sfl rebalance -p <portfolio> -w <weights> [-d <date>] [-f <fee>]

  Buys and sells so that each listed stock's value matches its target share
  of the total portfolio value on the given date. Stocks not listed in the
  targets are left untouched. All adjustments are validated together;
  nothing is written if any of them fails.

Usage Examples:
$ sfl rebalance -p "Retirement" -w "GOOG:25,MSFT:75" -f 9.90
`
}

func (c *rebalanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio name.")
	f.StringVar(&c.date, "d", stockfolio.Today().String(), "Rebalance date.")
	f.StringVar(&c.weights, "w", "", "Targets as SYMBOL:PERCENT pairs. Must sum to 100.")
	f.StringVar(&c.fee, "f", "0", "Commission fee per adjustment, in USD.")
}

func (c *rebalanceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := stockfolio.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	targets, err := parseWeights(c.weights)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	fee, err := parseUSD(c.fee)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing fee: %v\n", err)
		return subcommands.ExitUsageError
	}

	oracle := Oracle()
	repo, err := LoadRepository(oracle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading repository: %v\n", err)
		return subcommands.ExitFailure
	}
	p, err := selectPortfolio(repo, c.portfolio)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	if err := p.Rebalance(oracle, on, targets, fee); err != nil {
		fmt.Fprintf(os.Stderr, "Error rebalancing: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := SaveRepository(repo); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving repository: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Rebalanced %q on %s\n", p.Name(), on)
	return subcommands.ExitSuccess
}
