package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"stockfolio"
)

type buyCmd struct {
	portfolio string
	symbol    string
	volume    string
	date      string
	fee       string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record a stock purchase" }
func (*buyCmd) Usage() string {
	return `sfl buy -p <portfolio> -s <symbol> -v <volume> [-d <date>] [-f <fee>]

  Records a purchase at the closing price of the given date. The date may be
  in the past; the whole history is re-validated before anything is written.

Usage Examples:
$ sfl buy -p "Retirement" -s GOOG -v 30 -d 2025-01-10 -f 9.90
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio name.")
	f.StringVar(&c.symbol, "s", "", "Ticker symbol.")
	f.StringVar(&c.volume, "v", "", "Number of shares.")
	f.StringVar(&c.date, "d", stockfolio.Today().String(), "Transaction date.")
	f.StringVar(&c.fee, "f", "0", "Commission fee in USD.")
}

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return executeTrade(c.portfolio, c.symbol, c.volume, c.date, c.fee, false)
}

// executeTrade is the shared body of the buy and sell commands.
func executeTrade(portfolio, symbol, volume, date, fee string, sell bool) subcommands.ExitStatus {
	v, err := stockfolio.ParseQuantity(volume)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing volume: %v\n", err)
		return subcommands.ExitUsageError
	}
	on, err := stockfolio.ParseDate(date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	cost, err := parseUSD(fee)
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
	p, err := selectPortfolio(repo, portfolio)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	orders := []stockfolio.Order{{Symbol: symbol, On: on, Volume: v}}
	verb := "Bought"
	if sell {
		err = p.Sell(oracle, orders, cost)
		verb = "Sold"
	} else {
		err = p.Buy(oracle, orders, cost)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error recording transaction: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := SaveRepository(repo); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving repository: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s %s %s on %s (fee %s)\n", verb, v, symbol, on, cost)
	return subcommands.ExitSuccess
}
