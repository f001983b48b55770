package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"stockfolio"
)

type valueCmd struct {
	portfolio string
	date      string
}

func (*valueCmd) Name() string     { return "value" }
func (*valueCmd) Synopsis() string { return "display the portfolio market value on a date" }
func (*valueCmd) Usage() string {
	return `sfl value -p <portfolio> [-d <date>]

  Displays the total market value and the per-stock breakdown on a given
  date. Asking about last month is the same computation as asking about
  today; future dates are rejected.
`
}

func (c *valueCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio name.")
	f.StringVar(&c.date, "d", stockfolio.Today().String(), "Valuation date.")
}

func (c *valueCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := stockfolio.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
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
	v, err := p.Value(on, oracle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing value: %v\n", err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s on %s\n\n", p.Name(), v.On)
	fmt.Fprintln(&b, "| Symbol | Name | Position | Value |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|")
	for _, sv := range v.Stocks {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", sv.Stock.Symbol, sv.Stock.Name, sv.Position, sv.Value)
	}
	fmt.Fprintf(&b, "\n**Total: %s**\n", v.Total)
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
