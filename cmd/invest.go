package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"stockfolio"
)

type investCmd struct {
	portfolio string
	amount    string
	fee       string
	start     string
	weights   string
	every     string
	end       string
	once      bool
}

func (*investCmd) Name() string     { return "invest" }
func (*investCmd) Synopsis() string { return "create a dollar-cost investment plan" }
func (*investCmd) Usage() string {
	return `sfl invest -p <portfolio> -a <amount> -w <weights> [-d <start>] [-every <interval> | -once] [-end <date>] [-f <fee>]

  Creates an investment plan that splits a fixed dollar amount over weighted
  symbols. Recurring plans repeat at the given interval (1d, 2w, 1m, 1y);
  plans started on the 31st clamp to the end of shorter months. Plan
  investments are derived on the fly, never written into the ledgers, so
  adding the same plan twice is the only way to double-invest.

Usage Examples:
# $1000 every month, half in GOOG and half in MSFT.
$ sfl invest -p "Retirement" -a 1000 -w "GOOG:50,MSFT:50" -d 2025-09-01 -every 1m

# A single future investment.
$ sfl invest -p "Retirement" -a 500 -w "GOOG:100" -d 2025-12-31 -once
`
}

func (c *investCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio name.")
	f.StringVar(&c.amount, "a", "", "Total amount to invest per occurrence, in USD.")
	f.StringVar(&c.fee, "f", "0", "Commission fee per stock per occurrence, in USD.")
	f.StringVar(&c.start, "d", stockfolio.Today().String(), "First investment date.")
	f.StringVar(&c.weights, "w", "", "Weights as SYMBOL:PERCENT pairs, e.g. \"GOOG:50,MSFT:50\". Must sum to 100.")
	f.StringVar(&c.every, "every", "1m", "Recurrence interval: 1d, 2w, 1m, 1y...")
	f.StringVar(&c.end, "end", "", "Optional last investment date.")
	f.BoolVar(&c.once, "once", false, "Invest once instead of recurring.")
}

func (c *investCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := parseUSD(c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount: %v\n", err)
		return subcommands.ExitUsageError
	}
	fee, err := parseUSD(c.fee)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing fee: %v\n", err)
		return subcommands.ExitUsageError
	}
	start, err := stockfolio.ParseDate(c.start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
		return subcommands.ExitUsageError
	}
	weights, err := parseWeights(c.weights)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	var plan stockfolio.RecurringPlan
	if c.once {
		plan, err = stockfolio.NewOneTimePlan(start, amount, fee, weights)
	} else {
		var every stockfolio.Interval
		if every, err = stockfolio.ParseInterval(c.every); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing interval: %v\n", err)
			return subcommands.ExitUsageError
		}
		var end stockfolio.Date
		if c.end != "" {
			if end, err = stockfolio.ParseDate(c.end); err != nil {
				fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
				return subcommands.ExitUsageError
			}
		}
		plan, err = stockfolio.NewRecurringPlan(start, amount, fee, weights, every, end)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating plan: %v\n", err)
		return subcommands.ExitFailure
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
	if err := p.AddPlan(oracle, plan); err != nil {
		fmt.Fprintf(os.Stderr, "Error adding plan: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := SaveRepository(repo); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving repository: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.once {
		fmt.Printf("Planned %s on %s in %q\n", amount, start, p.Name())
	} else {
		fmt.Printf("Planned %s %s from %s in %q\n", amount, plan.Every(), start, p.Name())
	}
	return subcommands.ExitSuccess
}
