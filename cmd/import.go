package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"stockfolio"
)

type importCmd struct {
	input string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace the repository with portfolios from a CSV file" }
func (*importCmd) Usage() string {
	return `sfl import -i <file>

  Reads portfolios from a flexible-format CSV file and replaces the
  repository with them. Every row is validated against the price oracle
  and the full transaction history before anything is written.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "i", "", "CSV file to import.")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.input == "" {
		fmt.Fprintln(os.Stderr, "missing -i input file")
		return subcommands.ExitUsageError
	}
	file, err := os.Open(c.input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %q: %v\n", c.input, err)
		return subcommands.ExitFailure
	}
	defer file.Close()

	// An imported file replaces the repository, plans included: the sidecar
	// is rewritten from the new portfolios on save.
	repo, err := stockfolio.ImportRows(file, Oracle(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := SaveRepository(repo); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving repository: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Imported %d portfolios into %s\n", repo.Len(), *repositoryFile)
	return subcommands.ExitSuccess
}
