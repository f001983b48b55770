// Package cmd implements the CLI application to manage stock portfolios.
package cmd

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"stockfolio"
	"stockfolio/alphavantage"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&createCmd{}, "portfolios")
	c.Register(&importCmd{}, "portfolios")
	c.Register(&exportCmd{}, "portfolios")

	c.Register(&buyCmd{}, "transactions")
	c.Register(&sellCmd{}, "transactions")
	c.Register(&rebalanceCmd{}, "transactions")

	c.Register(&investCmd{}, "plans")
	c.Register(&pendingCmd{}, "plans")

	c.Register(&valueCmd{}, "reports")
	c.Register(&holdingCmd{}, "reports")
	c.Register(&costBasisCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")

	c.Register(&topicCmd{}, "documentation")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var repositoryFile = flag.String("repository-file", "portfolios.csv", "Path to the portfolios file (flexible CSV format)")

// Oracle returns the price oracle backing every command.
func Oracle() stockfolio.PriceOracle {
	return alphavantage.NewClient(alphavantage.APIKey())
}

// LoadRepository reads the repository file and its plans sidecar, or
// returns an empty repository when the file does not exist yet. Plans are
// read first and handed to the import, so that sells covered by scheduled
// investments replay cleanly.
func LoadRepository(oracle stockfolio.PriceOracle) (*stockfolio.Repository, error) {
	plans, err := readPlans()
	if err != nil {
		return nil, err
	}
	f, err := os.Open(*repositoryFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("file", *repositoryFile).Msg("repository file does not exist, starting empty")
		return stockfolio.NewRepository(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	repo, err := stockfolio.ImportRows(f, oracle, plans)
	if errors.Is(err, stockfolio.ErrEmptyInput) {
		repo, err = stockfolio.NewRepository(), nil
	}
	if err != nil {
		return nil, err
	}
	for name := range plans {
		if _, ok := repo.ByName(name); !ok {
			log.Warn().Str("portfolio", name).Msg("plans for unknown portfolio, skipped")
		}
	}
	return repo, nil
}

// SaveRepository writes the repository and its plans back to disk.
func SaveRepository(repo *stockfolio.Repository) error {
	for _, p := range repo.All() {
		empty := true
		for _, ledger := range p.Ledgers() {
			if ledger.Len() > 0 {
				empty = false
				break
			}
		}
		if empty {
			// The CSV format has one row per transaction, so a portfolio
			// without any cannot be represented.
			log.Warn().Str("portfolio", p.Name()).Msg("no transactions yet, will not survive a reload")
		}
	}
	f, err := os.Create(*repositoryFile)
	if err != nil {
		return err
	}
	if err := stockfolio.Export(f, repo); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return savePlans(repo)
}

// plansFile is the sidecar holding investment plans, which the CSV
// interchange format cannot carry.
func plansFile() string { return *repositoryFile + ".plans.json" }

// readPlans reads the saved plans, keyed by portfolio name.
func readPlans() (map[string][]stockfolio.RecurringPlan, error) {
	content, err := os.ReadFile(plansFile())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	byName := make(map[string][]stockfolio.RecurringPlan)
	if err := json.Unmarshal(content, &byName); err != nil {
		return nil, fmt.Errorf("cannot read plans file %q: %w", plansFile(), err)
	}
	return byName, nil
}

// savePlans writes every portfolio's plans to the sidecar file.
func savePlans(repo *stockfolio.Repository) error {
	byName := make(map[string][]stockfolio.RecurringPlan)
	for _, p := range repo.All() {
		if plans := p.Plans(); len(plans) > 0 {
			byName[p.Name()] = plans
		}
	}
	if len(byName) == 0 {
		err := os.Remove(plansFile())
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	content, err := json.MarshalIndent(byName, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(plansFile(), content, 0644)
}

// selectPortfolio finds a portfolio by name in the repository.
func selectPortfolio(repo *stockfolio.Repository, name string) (*stockfolio.Portfolio, error) {
	if name == "" {
		return nil, fmt.Errorf("missing -p portfolio name")
	}
	p, ok := repo.ByName(name)
	if !ok {
		return nil, fmt.Errorf("no portfolio named %q in %s", name, *repositoryFile)
	}
	return p, nil
}

// parseWeights parses the "GOOG:50,MSFT:50" weight notation.
func parseWeights(s string) ([]stockfolio.Weighting, error) {
	if s == "" {
		return nil, fmt.Errorf("missing weights, want e.g. \"GOOG:50,MSFT:50\"")
	}
	var weights []stockfolio.Weighting
	for _, part := range strings.Split(s, ",") {
		symbol, pct, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("invalid weight %q, want SYMBOL:PERCENT", part)
		}
		value, err := decimal.NewFromString(pct)
		if err != nil {
			return nil, fmt.Errorf("invalid percentage in %q: %w", part, err)
		}
		weights = append(weights, stockfolio.Weighting{Symbol: symbol, Percent: stockfolio.Pct(value)})
	}
	return weights, nil
}

// parseUSD parses a dollar amount like "1000" or "999.90".
func parseUSD(s string) (stockfolio.Money, error) {
	value, err := decimal.NewFromString(s)
	if err != nil {
		return stockfolio.Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return stockfolio.M(value, stockfolio.USD), nil
}
