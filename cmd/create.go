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

// seedFlag accumulates repeated -s SYMBOL:VOLUME:DATE holdings.
type seedFlag []string

func (s *seedFlag) String() string { return strings.Join(*s, " ") }
func (s *seedFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type createCmd struct {
	name  string
	seeds seedFlag
}

func (*createCmd) Name() string     { return "create" }
func (*createCmd) Synopsis() string { return "create a new portfolio" }
func (*createCmd) Usage() string {
	return `sfl create -n <name> [-s SYMBOL:VOLUME:DATE]...

  Creates a new, optionally pre-seeded, portfolio in the repository file.

Usage Examples:
# An empty portfolio.
$ sfl create -n "Retirement"

# With initial holdings, bought commission-free at the closing price of their date.
$ sfl create -n "Retirement" -s GOOG:30:2025-01-10 -s MSFT:15:2025-01-10
`
}

func (c *createCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "n", "", "Name of the new portfolio.")
	f.Var(&c.seeds, "s", "Initial holding as SYMBOL:VOLUME:DATE. Repeatable.")
}

func (c *createCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	builder := stockfolio.NewBuilder(c.name)
	for _, seed := range c.seeds {
		parts := strings.Split(seed, ":")
		if len(parts) != 3 {
			fmt.Fprintf(os.Stderr, "Error: invalid holding %q, want SYMBOL:VOLUME:DATE\n", seed)
			return subcommands.ExitUsageError
		}
		volume, err := stockfolio.ParseQuantity(parts[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid volume in %q: %v\n", seed, err)
			return subcommands.ExitUsageError
		}
		on, err := stockfolio.ParseDate(parts[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid date in %q: %v\n", seed, err)
			return subcommands.ExitUsageError
		}
		builder = builder.WithStock(parts[0], volume, on)
	}

	oracle := Oracle()
	repo, err := LoadRepository(oracle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading repository: %v\n", err)
		return subcommands.ExitFailure
	}
	p, err := builder.Build(oracle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	id, err := repo.Add(p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := SaveRepository(repo); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving repository: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Created portfolio %q (id %d) in %s\n", p.Name(), id, *repositoryFile)
	return subcommands.ExitSuccess
}
