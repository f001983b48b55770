package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"stockfolio"
)

type costBasisCmd struct {
	portfolio string
	date      string
}

func (*costBasisCmd) Name() string     { return "costbasis" }
func (*costBasisCmd) Synopsis() string { return "display the cash committed up to a date" }
func (*costBasisCmd) Usage() string {
	return `sfl costbasis -p <portfolio> [-d <date>]

  Displays the cumulative cash committed to the portfolio on a given date:
  every purchase at its price plus every commission fee, including fees on
  sales. Sale proceeds never reduce the figure.
`
}

func (c *costBasisCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio name.")
	f.StringVar(&c.date, "d", stockfolio.Today().String(), "Date for the cost basis.")
}

func (c *costBasisCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	basis, err := p.CostBasis(on, oracle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing cost basis: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Cost basis of %q on %s: %s\n", p.Name(), on, basis)
	return subcommands.ExitSuccess
}
