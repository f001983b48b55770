package stockfolio

import (
	"fmt"
	"iter"
	"sort"
)

// Transaction is a single signed entry in a stock ledger: a positive volume
// is a buy, a negative volume a sell. A transaction is owned exclusively by
// the ledger that created it and is never mutated afterwards; corrections
// are new transactions.
type Transaction struct {
	date   Date
	volume Quantity // signed: positive buy, negative sell
	price  Money    // unit price at the transaction date
	fee    Money    // commission, never negative
}

// When returns the date on which the transaction occurred.
func (t Transaction) When() Date { return t.date }

// Volume returns the signed share volume.
func (t Transaction) Volume() Quantity { return t.volume }

// Price returns the unit price at the transaction date.
func (t Transaction) Price() Money { return t.price }

// Fee returns the commission charged on the transaction.
func (t Transaction) Fee() Money { return t.fee }

func (t Transaction) Equal(o Transaction) bool {
	return t.date == o.date && t.volume.Equal(o.volume) && t.price.Equal(o.price) && t.fee.Equal(o.fee)
}

// costContribution is the cash this transaction committed: principal plus
// fee for a buy, fee only for a sell (proceeds do not reduce basis).
func (t Transaction) costContribution() Money {
	if t.volume.IsPositive() {
		return t.price.Mul(t.volume).Add(t.fee)
	}
	return t.fee
}

// StockLedger is the ordered transaction history for one stock within one
// portfolio. Transactions are always in chronological order, and at every
// prefix of the history the running position is non-negative.
//
// The ledger captures the stock's listing window at creation so that reads
// and appends can be validated without further oracle lookups.
type StockLedger struct {
	stock    Stock
	ipo      Date
	delisted Date // zero while the stock is still listed
	txs      []Transaction
}

// NewStockLedger creates an empty ledger for a symbol, resolving its
// identity and listing window through the oracle.
func NewStockLedger(oracle PriceOracle, symbol string) (*StockLedger, error) {
	stock, err := oracle.Identity(symbol)
	if err != nil {
		return nil, err
	}
	ipo, err := oracle.IPODate(symbol)
	if err != nil {
		return nil, err
	}
	ledger := &StockLedger{stock: stock, ipo: ipo}
	if delisted, ok, err := oracle.DelistingDate(symbol); err != nil {
		return nil, err
	} else if ok {
		ledger.delisted = delisted
	}
	return ledger, nil
}

// Stock returns the identity of the security this ledger tracks.
func (l *StockLedger) Stock() Stock { return l.stock }

// IPODate returns the first date the stock was listed.
func (l *StockLedger) IPODate() Date { return l.ipo }

// Transactions returns an iterator over the recorded transactions in
// chronological order.
func (l *StockLedger) Transactions() iter.Seq2[int, Transaction] {
	return func(yield func(int, Transaction) bool) {
		for i, tx := range l.txs {
			if !yield(i, tx) {
				return
			}
		}
	}
}

// Len returns the number of recorded transactions.
func (l *StockLedger) Len() int { return len(l.txs) }

// inWindow reports whether a date falls inside the stock's listing window.
func (l *StockLedger) inWindow(on Date) bool {
	if on.Before(l.ipo) {
		return false
	}
	return l.delisted.IsZero() || !on.After(l.delisted)
}

// Position returns the net number of shares held on a date: the sum of
// signed volumes over transactions dated on or before it.
func (l *StockLedger) Position(asOf Date) Quantity {
	return l.PositionWith(nil, asOf)
}

// PositionWith is Position over the stored transactions merged with extra,
// unstored ones (materialized scheduled investments).
func (l *StockLedger) PositionWith(extra []Transaction, asOf Date) Quantity {
	var pos Quantity
	for _, tx := range l.txs {
		if tx.date.After(asOf) {
			// The ledger is sorted by date, so it is safe to break.
			break
		}
		pos = pos.Add(tx.volume)
	}
	for _, tx := range extra {
		if !tx.date.After(asOf) {
			pos = pos.Add(tx.volume)
		}
	}
	return pos
}

// CostContribution returns the cumulative cash committed to this stock on a
// date: buy principal plus every commission. Sell proceeds never reduce it.
func (l *StockLedger) CostContribution(asOf Date) Money {
	total := USDollars(0)
	for _, tx := range l.txs {
		if tx.date.After(asOf) {
			break
		}
		total = total.Add(tx.costContribution())
	}
	return total
}

// ValueOnDate returns the market value of the position on a date. It fails
// with ErrOutOfListingWindow when the date precedes the IPO or follows the
// delisting of the stock.
func (l *StockLedger) ValueOnDate(asOf Date, oracle PriceOracle) (Money, error) {
	return l.valueWith(nil, asOf, oracle)
}

func (l *StockLedger) valueWith(extra []Transaction, asOf Date, oracle PriceOracle) (Money, error) {
	if !l.inWindow(asOf) {
		return Money{}, fmt.Errorf("%s on %s: %w", l.stock.Symbol, asOf, ErrOutOfListingWindow)
	}
	price, err := oracle.PriceOnDate(l.stock.Symbol, asOf, false)
	if err != nil {
		return Money{}, err
	}
	return price.Mul(l.PositionWith(extra, asOf)), nil
}

// Append validates and records a transaction. Extra transactions (e.g.
// scheduled investments already materialized) participate in the
// running-position check without being stored.
//
// It fails with ErrInvalidVolume on a zero volume, ErrInvalidAmount on a
// negative fee, ErrFutureDate when the date is after today,
// ErrOutOfListingWindow when the date is outside the stock's listing
// window, and ErrNegativePosition when the date-sorted replay of the whole
// ledger would dip below zero at any point.
func (l *StockLedger) Append(on Date, volume Quantity, price, fee Money, extra ...Transaction) error {
	tx, err := l.stage(on, volume, price, fee)
	if err != nil {
		return err
	}
	candidates := append(append([]Transaction{}, extra...), tx)
	if err := l.check(candidates); err != nil {
		return err
	}
	l.insert(tx)
	return nil
}

// stage runs the per-transaction validations and builds the candidate
// transaction without storing it.
func (l *StockLedger) stage(on Date, volume Quantity, price, fee Money) (Transaction, error) {
	if volume.IsZero() {
		return Transaction{}, fmt.Errorf("%s: %w: volume cannot be zero", l.stock.Symbol, ErrInvalidVolume)
	}
	if fee.IsNegative() {
		return Transaction{}, fmt.Errorf("%s: %w: commission fee %s cannot be negative", l.stock.Symbol, ErrInvalidAmount, fee)
	}
	if on.After(Today()) {
		return Transaction{}, fmt.Errorf("%s on %s: %w", l.stock.Symbol, on, ErrFutureDate)
	}
	if !l.inWindow(on) {
		return Transaction{}, fmt.Errorf("%s on %s: %w", l.stock.Symbol, on, ErrOutOfListingWindow)
	}
	return Transaction{date: on, volume: volume, price: price, fee: fee}, nil
}

// check replays the stored transactions merged with the candidates in date
// order and fails with ErrNegativePosition if the running position goes
// below zero at any transaction boundary. The whole history is replayed,
// not just the tail: a backdated entry is validated at its effective date.
func (l *StockLedger) check(candidates []Transaction) error {
	all := make([]Transaction, 0, len(l.txs)+len(candidates))
	all = append(all, l.txs...)
	all = append(all, candidates...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].date.Before(all[j].date) })

	var pos Quantity
	for _, tx := range all {
		pos = pos.Add(tx.volume)
		if pos.IsNegative() {
			return fmt.Errorf("%s on %s: %w: position would be %s", l.stock.Symbol, tx.date, ErrNegativePosition, pos)
		}
	}
	return nil
}

// insert stores an already-validated transaction, keeping chronological
// order. The insert is stable: same-day transactions keep insertion order.
func (l *StockLedger) insert(tx Transaction) {
	l.txs = append(l.txs, tx)
	sort.SliceStable(l.txs, func(i, j int) bool { return l.txs[i].date.Before(l.txs[j].date) })
}

// equal reports value equality of two ledgers: same identity, same listing
// window, same transactions in the same order.
func (l *StockLedger) equal(o *StockLedger) bool {
	if !l.stock.Equal(o.stock) || l.ipo != o.ipo || l.delisted != o.delisted || len(l.txs) != len(o.txs) {
		return false
	}
	for i := range l.txs {
		if !l.txs[i].Equal(o.txs[i]) {
			return false
		}
	}
	return true
}
