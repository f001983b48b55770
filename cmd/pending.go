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

type pendingCmd struct {
	portfolio string
	date      string
}

func (*pendingCmd) Name() string     { return "pending" }
func (*pendingCmd) Synopsis() string { return "show the next scheduled investments" }
func (*pendingCmd) Usage() string {
	return `sfl pending -p <portfolio> [-d <date>]

  Shows, for each investment plan and symbol, the next scheduled buy
  strictly after the given date.
`
}

func (c *pendingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio name.")
	f.StringVar(&c.date, "d", stockfolio.Today().String(), "Reference date.")
}

func (c *pendingCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	today, err := stockfolio.ParseDate(c.date)
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

	pending := p.PendingInvestments(today)
	if len(pending) == 0 {
		fmt.Printf("No pending investments in %q after %s\n", p.Name(), today)
		return subcommands.ExitSuccess
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Pending investments for %s\n\n", p.Name())
	fmt.Fprintln(&b, "| Date | Symbol | Amount |")
	fmt.Fprintln(&b, "|:---|:---|---:|")
	for _, pi := range pending {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", pi.On, pi.Symbol, pi.Amount)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
