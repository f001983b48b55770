package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"stockfolio"
)

type sellCmd struct {
	portfolio string
	symbol    string
	volume    string
	date      string
	fee       string
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a stock sale" }
func (*sellCmd) Usage() string {
	return `sfl sell -p <portfolio> -s <symbol> -v <volume> [-d <date>] [-f <fee>]

  Records a sale at the closing price of the given date. A sale that would
  take the position below zero on any date is rejected.

Usage Examples:
$ sfl sell -p "Retirement" -s GOOG -v 5 -d 2025-02-10 -f 9.90
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio name.")
	f.StringVar(&c.symbol, "s", "", "Ticker symbol.")
	f.StringVar(&c.volume, "v", "", "Number of shares.")
	f.StringVar(&c.date, "d", stockfolio.Today().String(), "Transaction date.")
	f.StringVar(&c.fee, "f", "0", "Commission fee in USD.")
}

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return executeTrade(c.portfolio, c.symbol, c.volume, c.date, c.fee, true)
}
