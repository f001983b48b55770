package stockfolio

import (
	"errors"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// flexibleRow is one (portfolio, stock, transaction) line of the flexible
// CSV interchange format. Amounts travel as plain decimal strings so that
// an export re-imported answers bit-identically.
type flexibleRow struct {
	PortfolioName                  string `csv:"PortfolioName"`
	StockSymbol                    string `csv:"StockSymbol"`
	StockName                      string `csv:"StockName"`
	StockExchange                  string `csv:"StockExchange"`
	StockTransactionDate           string `csv:"StockTransactionDate"`
	StockTransactionVolume         string `csv:"StockTransactionVolume"`
	StockTransactionPurchasePrice  string `csv:"StockTransactionPurchasePrice"`
	StockTransactionCommissionFees string `csv:"StockTransactionCommissionFees"`
}

// simpleRow is one (portfolio, stock) line of the simple CSV format: just
// the net position, no transaction history. Export only.
type simpleRow struct {
	PortfolioName string `csv:"PortfolioName"`
	StockSymbol   string `csv:"StockSymbol"`
	StockName     string `csv:"StockName"`
	StockExchange string `csv:"StockExchange"`
	StockVolume   string `csv:"StockVolume"`
}

// Export writes every portfolio of the repository in the flexible CSV
// format, one row per transaction, in repository, ledger and date order.
func Export(w io.Writer, r *Repository) error {
	rows := []flexibleRow{}
	for _, p := range r.All() {
		for sym, ledger := range p.Ledgers() {
			for _, tx := range ledger.Transactions() {
				rows = append(rows, flexibleRow{
					PortfolioName:                  p.Name(),
					StockSymbol:                    sym,
					StockName:                      ledger.Stock().Name,
					StockExchange:                  ledger.Stock().Exchange,
					StockTransactionDate:           tx.When().String(),
					StockTransactionVolume:         tx.Volume().String(),
					StockTransactionPurchasePrice:  tx.Price().Decimal().String(),
					StockTransactionCommissionFees: tx.Fee().Decimal().String(),
				})
			}
		}
	}
	return gocsv.Marshal(&rows, w)
}

// ExportSimple writes every portfolio in the simple CSV format: one row per
// stock with its net position on the given date, scheduled-plan investments
// included. History is not representable in this format, so there is no
// matching import.
func ExportSimple(w io.Writer, r *Repository, oracle PriceOracle, asOf Date) error {
	rows := []simpleRow{}
	for _, p := range r.All() {
		extras, err := p.materializedBySymbol(oracle, asOf)
		if err != nil {
			return err
		}
		for sym, ledger := range p.Ledgers() {
			rows = append(rows, simpleRow{
				PortfolioName: p.Name(),
				StockSymbol:   sym,
				StockName:     ledger.Stock().Name,
				StockExchange: ledger.Stock().Exchange,
				StockVolume:   ledger.PositionWith(extras[sym], asOf).String(),
			})
		}
	}
	return gocsv.Marshal(&rows, w)
}

// ImportRows reads the flexible CSV format and rebuilds a repository.
//
// Rows are grouped into portfolios by name in order of first appearance;
// rows sharing (portfolio, symbol) merge into one ledger, one transaction
// per row. Every row passes the full validation chain again: name pattern,
// numeric non-zero volume (negative rows are sells), known symbol, row
// identity matching the oracle record, and the date-sorted replay of each
// rebuilt ledger. The first offending row fails the import.
//
// plans, keyed by portfolio name, are the investment plans to re-attach:
// the CSV format stores transactions only, and a sell covered by a
// scheduled investment replays cleanly only when the plan is back in
// place. Names without any row are ignored.
func ImportRows(rd io.Reader, oracle PriceOracle, plans map[string][]RecurringPlan) (*Repository, error) {
	var rows []flexibleRow
	if err := gocsv.Unmarshal(rd, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, fmt.Errorf("%w: %v", ErrEmptyInput, err)
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no data rows", ErrEmptyInput)
	}

	imp := importer{
		oracle:     oracle,
		portfolios: make(map[string]*Portfolio),
		staged:     make(map[*StockLedger][]Transaction),
	}
	for i, row := range rows {
		if err := imp.row(row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	for _, name := range imp.order {
		for _, plan := range plans[name] {
			if err := imp.portfolios[name].AddPlan(oracle, plan); err != nil {
				return nil, err
			}
		}
	}

	// Replay every rebuilt ledger by date, not by file order: a sell may be
	// covered by a buy row listed later, or by a scheduled investment of
	// one of the portfolio's plans.
	for _, name := range imp.order {
		p := imp.portfolios[name]
		extras, err := p.materializedBySymbol(oracle, Today())
		if err != nil {
			return nil, err
		}
		for sym, ledger := range p.Ledgers() {
			all := append(append([]Transaction{}, extras[sym]...), imp.staged[ledger]...)
			if err := ledger.check(all); err != nil {
				return nil, err
			}
		}
	}
	for _, ledger := range imp.ledgers {
		for _, tx := range imp.staged[ledger] {
			ledger.insert(tx)
		}
	}

	repo := NewRepository()
	for _, name := range imp.order {
		if _, err := repo.Add(imp.portfolios[name]); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

type importer struct {
	oracle     PriceOracle
	portfolios map[string]*Portfolio
	order      []string
	ledgers    []*StockLedger
	staged     map[*StockLedger][]Transaction
}

func (imp *importer) row(row flexibleRow) error {
	if err := ValidateName(row.PortfolioName); err != nil {
		return err
	}
	volume, err := ParseQuantity(row.StockTransactionVolume)
	if err != nil {
		return fmt.Errorf("%s: %w: volume %q is not a number", row.StockSymbol, ErrInvalidVolume, row.StockTransactionVolume)
	}
	if volume.IsZero() {
		return fmt.Errorf("%s: %w: volume cannot be zero", row.StockSymbol, ErrInvalidVolume)
	}
	on, err := ParseDate(row.StockTransactionDate)
	if err != nil {
		return err
	}
	price, err := parseUSD(row.StockTransactionPurchasePrice)
	if err != nil {
		return fmt.Errorf("%s: %w: price %q is not a number", row.StockSymbol, ErrInvalidAmount, row.StockTransactionPurchasePrice)
	}
	fee, err := parseUSD(row.StockTransactionCommissionFees)
	if err != nil {
		return fmt.Errorf("%s: %w: fee %q is not a number", row.StockSymbol, ErrInvalidAmount, row.StockTransactionCommissionFees)
	}

	p, ok := imp.portfolios[row.PortfolioName]
	if !ok {
		if p, err = New(row.PortfolioName); err != nil {
			return err
		}
		imp.portfolios[row.PortfolioName] = p
		imp.order = append(imp.order, row.PortfolioName)
	}

	before := len(p.symbols)
	ledger, err := p.ledger(imp.oracle, row.StockSymbol)
	if err != nil {
		return err
	}
	if len(p.symbols) > before {
		imp.ledgers = append(imp.ledgers, ledger)
	}
	recorded := Stock{Symbol: row.StockSymbol, Name: row.StockName, Exchange: row.StockExchange}
	if !ledger.Stock().Equal(recorded) {
		return fmt.Errorf("%w: row says %s, oracle says %s", ErrStockMismatch, recorded, ledger.Stock())
	}
	tx, err := ledger.stage(on, volume, price, fee)
	if err != nil {
		return err
	}
	imp.staged[ledger] = append(imp.staged[ledger], tx)
	return nil
}

func parseUSD(s string) (Money, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return M(v, USD), nil
}
