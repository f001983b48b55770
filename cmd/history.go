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

type historyCmd struct {
	portfolio string
	start     string
	end       string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the day-by-day portfolio value over a range" }
func (*historyCmd) Usage() string {
	return `sfl history -p <portfolio> -s <start> [-e <end>]

  Displays the total market value of the portfolio for every day of the
  range, the raw series a charting tool consumes.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio name.")
	f.StringVar(&c.start, "s", "", "First day of the range.")
	f.StringVar(&c.end, "e", stockfolio.Today().String(), "Last day of the range.")
}

func (c *historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from, err := stockfolio.ParseDate(c.start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
		return subcommands.ExitUsageError
	}
	to, err := stockfolio.ParseDate(c.end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
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
	series, err := p.ValueSeries(oracle, stockfolio.NewRange(from, to))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing series: %v\n", err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Value of %s from %s to %s\n\n", p.Name(), from, to)
	fmt.Fprintln(&b, "| Date | Value |")
	fmt.Fprintln(&b, "|:---|---:|")
	for on, value := range series.Values() {
		fmt.Fprintf(&b, "| %s | %.2f |\n", on, value)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
