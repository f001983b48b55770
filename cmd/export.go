package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"stockfolio"
)

type exportCmd struct {
	output string
	simple bool
	date   string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the portfolios as CSV" }
func (*exportCmd) Usage() string {
	return `sfl export [-o <file>] [-simple [-d <date>]]

  Writes every portfolio to stdout (or a file) in the flexible CSV format,
  one row per transaction. With -simple, writes one row per stock with its
  net position on the given date instead; that variant carries no history
  and cannot be imported back.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file. Defaults to stdout.")
	f.BoolVar(&c.simple, "simple", false, "Use the simple one-row-per-stock format.")
	f.StringVar(&c.date, "d", stockfolio.Today().String(), "Position date for the simple format.")
}

func (c *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	var w io.Writer = os.Stdout
	if c.output != "" {
		file, err := os.Create(c.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		w = file
	}

	if c.simple {
		err = stockfolio.ExportSimple(w, repo, oracle, on)
	} else {
		err = stockfolio.Export(w, repo)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
