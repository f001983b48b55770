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

// holdingCmd holds the flags for the 'holding' subcommand.
type holdingCmd struct {
	portfolio string
	date      string
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "display the stocks held on a specific date" }
func (*holdingCmd) Usage() string {
	return `sfl holding -p <portfolio> [-d <date>]

  Displays the portfolio composition on a given date: every stock with a
  positive position, scheduled plan investments included.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio name.")
	f.StringVar(&c.date, "d", stockfolio.Today().String(), "Date for the composition report.")
}

func (c *holdingCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	holdings, err := p.Composition(on, oracle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing composition: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(holdings) == 0 {
		fmt.Printf("Nothing held in %q on %s\n", p.Name(), on)
		return subcommands.ExitSuccess
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Holdings of %s on %s\n\n", p.Name(), on)
	fmt.Fprintln(&b, "| Symbol | Name | Exchange | Position |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|")
	for _, h := range holdings {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", h.Stock.Symbol, h.Stock.Name, h.Stock.Exchange, h.Position)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
