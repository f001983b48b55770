package stockfolio

import (
	"fmt"
	"iter"
)

// Order is one entry of a batch trade: buy or sell Volume shares of Symbol
// on a date. The execution price is resolved through the oracle; the caller
// provides only what it decided, not market data.
type Order struct {
	Symbol string
	On     Date
	Volume Quantity // always positive; Buy and Sell set the sign
}

// Holding is a stock and the number of shares held.
type Holding struct {
	Stock    Stock
	Position Quantity
}

// StockValue is the valuation of a single position on a date.
type StockValue struct {
	Stock    Stock
	Position Quantity
	Value    Money
}

// Valuation is the full picture of a portfolio on a date: total market
// value and the per-stock breakdown, including zero positions.
type Valuation struct {
	On     Date
	Total  Money
	Stocks []StockValue
}

// Portfolio is a named collection of stock ledgers and dollar-cost
// investment plans. All derived figures (position, cost basis, value) are
// pure functions of the query date, so asking about last month is the same
// computation as asking about today.
type Portfolio struct {
	name    string
	symbols []string // ledger iteration order, first transaction first
	ledgers map[string]*StockLedger
	plans   []RecurringPlan
}

// New creates an empty portfolio.
func New(name string) (*Portfolio, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return &Portfolio{name: name, ledgers: make(map[string]*StockLedger)}, nil
}

// Name returns the portfolio name.
func (p *Portfolio) Name() string { return p.name }

// Ledgers returns an iterator over the per-stock ledgers in the order the
// stocks entered the portfolio.
func (p *Portfolio) Ledgers() iter.Seq2[string, *StockLedger] {
	return func(yield func(string, *StockLedger) bool) {
		for _, sym := range p.symbols {
			if !yield(sym, p.ledgers[sym]) {
				return
			}
		}
	}
}

// Plans returns the portfolio's investment plans.
func (p *Portfolio) Plans() []RecurringPlan { return append([]RecurringPlan{}, p.plans...) }

// ledger returns the ledger for a symbol, creating it through the oracle on
// first use. A ledger created here is already registered in the portfolio.
func (p *Portfolio) ledger(oracle PriceOracle, symbol string) (*StockLedger, error) {
	if l, ok := p.ledgers[symbol]; ok {
		return l, nil
	}
	l, err := NewStockLedger(oracle, symbol)
	if err != nil {
		return nil, err
	}
	p.ledgers[symbol] = l
	p.symbols = append(p.symbols, symbol)
	return l, nil
}

// dropLedger unregisters a ledger added during a batch that failed.
func (p *Portfolio) dropLedger(symbol string) {
	delete(p.ledgers, symbol)
	for i, s := range p.symbols {
		if s == symbol {
			p.symbols = append(p.symbols[:i], p.symbols[i+1:]...)
			return
		}
	}
}

// materializedBySymbol merges the derived buy transactions of every plan up
// to asOf, grouped by symbol.
func (p *Portfolio) materializedBySymbol(oracle PriceOracle, asOf Date) (map[string][]Transaction, error) {
	merged := make(map[string][]Transaction)
	for _, plan := range p.plans {
		txs, err := plan.Materialized(oracle, asOf)
		if err != nil {
			return nil, err
		}
		for sym, list := range txs {
			merged[sym] = append(merged[sym], list...)
		}
	}
	return merged, nil
}

// Buy records a batch of purchases, one transaction per order, each priced
// at the oracle's closing price on its date and charged the same fee.
//
// The batch is all-or-nothing: every order is validated against the merged
// date-sorted history (stored transactions, scheduled-plan buys and the
// whole batch together) before any ledger is touched. On error the
// portfolio is exactly as it was.
func (p *Portfolio) Buy(oracle PriceOracle, orders []Order, fee Money) error {
	return p.trade(oracle, orders, fee, false)
}

// Sell is Buy with negated volumes. A sell that oversells its position
// fails the whole batch, even when a later-dated buy in the same batch
// would cover it: the replay checks every prefix.
func (p *Portfolio) Sell(oracle PriceOracle, orders []Order, fee Money) error {
	return p.trade(oracle, orders, fee, true)
}

func (p *Portfolio) trade(oracle PriceOracle, orders []Order, fee Money, sell bool) error {
	if len(orders) == 0 {
		return fmt.Errorf("%w: no orders", ErrEmptyInput)
	}
	extras, err := p.materializedBySymbol(oracle, Today())
	if err != nil {
		return err
	}

	var added []string // ledgers created for this batch, dropped on failure
	fail := func(err error) error {
		for _, sym := range added {
			p.dropLedger(sym)
		}
		return err
	}

	// Stage every order, grouping candidates per ledger in first-appearance
	// order.
	var seen []*StockLedger
	candidates := make(map[*StockLedger][]Transaction)
	for _, o := range orders {
		if !o.Volume.IsPositive() {
			return fail(fmt.Errorf("%s: %w: volume %s must be positive", o.Symbol, ErrInvalidVolume, o.Volume))
		}
		before := len(p.symbols)
		ledger, err := p.ledger(oracle, o.Symbol)
		if err != nil {
			return fail(err)
		}
		if len(p.symbols) > before {
			added = append(added, o.Symbol)
		}
		price, err := oracle.PriceOnDate(o.Symbol, o.On, false)
		if err != nil {
			return fail(err)
		}
		volume := o.Volume
		if sell {
			volume = volume.Neg()
		}
		tx, err := ledger.stage(o.On, volume, price, fee)
		if err != nil {
			return fail(err)
		}
		if _, ok := candidates[ledger]; !ok {
			seen = append(seen, ledger)
		}
		candidates[ledger] = append(candidates[ledger], tx)
	}

	// Validate everything, then and only then commit.
	for _, ledger := range seen {
		all := append(append([]Transaction{}, extras[ledger.stock.Symbol]...), candidates[ledger]...)
		if err := ledger.check(all); err != nil {
			return fail(err)
		}
	}
	for _, ledger := range seen {
		for _, tx := range candidates[ledger] {
			ledger.insert(tx)
		}
	}
	return nil
}

// AddPlan attaches a dollar-cost investment plan. Every weighted symbol is
// resolved through the oracle, and the plan may not start before any of its
// symbols was listed.
func (p *Portfolio) AddPlan(oracle PriceOracle, plan RecurringPlan) error {
	if err := plan.validate(); err != nil {
		return err
	}
	var added []string
	for _, w := range plan.weights {
		before := len(p.symbols)
		ledger, err := p.ledger(oracle, w.Symbol)
		if err != nil {
			for _, sym := range added {
				p.dropLedger(sym)
			}
			return err
		}
		if len(p.symbols) > before {
			added = append(added, w.Symbol)
		}
		if plan.start.Before(ledger.ipo) {
			for _, sym := range added {
				p.dropLedger(sym)
			}
			return fmt.Errorf("%s: plan starts %s before IPO %s: %w", w.Symbol, plan.start, ledger.ipo, ErrOutOfListingWindow)
		}
	}
	p.plans = append(p.plans, plan)
	return nil
}

// PendingInvestments returns the next scheduled investment per plan and
// symbol, strictly after today.
func (p *Portfolio) PendingInvestments(today Date) []PendingInvestment {
	var pending []PendingInvestment
	for _, plan := range p.plans {
		pending = append(pending, plan.Pending(today)...)
	}
	return pending
}

// CostBasis returns the total cash committed to the portfolio on a date:
// every buy's principal plus every commission, recorded or plan-derived.
// Sell proceeds never reduce it.
func (p *Portfolio) CostBasis(asOf Date, oracle PriceOracle) (Money, error) {
	extras, err := p.materializedBySymbol(oracle, asOf)
	if err != nil {
		return Money{}, err
	}
	total := USDollars(0)
	for _, sym := range p.symbols {
		total = total.Add(p.ledgers[sym].CostContribution(asOf))
	}
	for _, txs := range extras {
		for _, tx := range txs {
			total = total.Add(tx.costContribution())
		}
	}
	return total, nil
}

// Value returns the market value of the portfolio on a date, with the
// per-stock breakdown including zero positions. Scheduled-plan buys up to
// the date are counted. It fails with ErrFutureDate when the date is after
// today, and with ErrOutOfListingWindow when shares are still held in a
// stock outside its listing window on that date.
func (p *Portfolio) Value(asOf Date, oracle PriceOracle) (Valuation, error) {
	if asOf.After(Today()) {
		return Valuation{}, fmt.Errorf("cannot value %s on %s: %w", p.name, asOf, ErrFutureDate)
	}
	extras, err := p.materializedBySymbol(oracle, asOf)
	if err != nil {
		return Valuation{}, err
	}
	v := Valuation{On: asOf, Total: USDollars(0)}
	for _, sym := range p.symbols {
		ledger := p.ledgers[sym]
		position := ledger.PositionWith(extras[sym], asOf)
		value, err := ledger.valueWith(extras[sym], asOf, oracle)
		if err != nil {
			// A stock not yet listed (or already delisted) with nothing
			// held is worth nothing on that date.
			if position.IsZero() && !ledger.inWindow(asOf) {
				value = USDollars(0)
			} else {
				return Valuation{}, err
			}
		}
		v.Stocks = append(v.Stocks, StockValue{Stock: ledger.stock, Position: position, Value: value})
		v.Total = v.Total.Add(value)
	}
	return v, nil
}

// Composition returns the stocks actually held on a date, scheduled-plan
// buys included.
func (p *Portfolio) Composition(asOf Date, oracle PriceOracle) ([]Holding, error) {
	extras, err := p.materializedBySymbol(oracle, asOf)
	if err != nil {
		return nil, err
	}
	var holdings []Holding
	for _, sym := range p.symbols {
		ledger := p.ledgers[sym]
		position := ledger.PositionWith(extras[sym], asOf)
		if position.IsPositive() {
			holdings = append(holdings, Holding{Stock: ledger.stock, Position: position})
		}
	}
	return holdings, nil
}

// Rebalance trades the portfolio towards the target weights on a date. For
// each target, in the given order, the stock's value is compared to
// weight x total portfolio value: a shortfall buys, a surplus sells, volume
// |delta| / price, each adjustment charged the same fee. Stocks absent from
// the targets are left untouched (their value still counts in the total).
// The batch is all-or-nothing.
func (p *Portfolio) Rebalance(oracle PriceOracle, asOf Date, targets []Weighting, fee Money) error {
	if len(targets) == 0 {
		return fmt.Errorf("%w: no targets", ErrEmptyInput)
	}
	var sum Percent
	for _, t := range targets {
		if err := ValidateSymbol(t.Symbol); err != nil {
			return err
		}
		if !t.Percent.IsPositive() {
			return fmt.Errorf("%w: target for %s is %s, must be positive", ErrInvalidWeights, t.Symbol, t.Percent)
		}
		sum = sum.Add(t.Percent)
	}
	if !sum.IsWhole() {
		return fmt.Errorf("%w: targets sum to %s, want 100%%", ErrInvalidWeights, sum)
	}

	valuation, err := p.Value(asOf, oracle)
	if err != nil {
		return err
	}
	extras, err := p.materializedBySymbol(oracle, asOf)
	if err != nil {
		return err
	}

	var added []string
	fail := func(err error) error {
		for _, sym := range added {
			p.dropLedger(sym)
		}
		return err
	}

	var seen []*StockLedger
	candidates := make(map[*StockLedger][]Transaction)
	for _, t := range targets {
		before := len(p.symbols)
		ledger, err := p.ledger(oracle, t.Symbol)
		if err != nil {
			return fail(err)
		}
		if len(p.symbols) > before {
			added = append(added, t.Symbol)
		}
		price, err := oracle.PriceOnDate(t.Symbol, asOf, false)
		if err != nil {
			return fail(err)
		}
		target := t.Percent.Of(valuation.Total)
		current := price.Mul(ledger.PositionWith(extras[t.Symbol], asOf))
		delta := target.Sub(current)
		if delta.IsZero() {
			continue
		}
		volume := delta.DivPrice(price)
		tx, err := ledger.stage(asOf, volume, price, fee)
		if err != nil {
			return fail(err)
		}
		if _, ok := candidates[ledger]; !ok {
			seen = append(seen, ledger)
		}
		candidates[ledger] = append(candidates[ledger], tx)
	}

	for _, ledger := range seen {
		all := append(append([]Transaction{}, extras[ledger.stock.Symbol]...), candidates[ledger]...)
		if err := ledger.check(all); err != nil {
			return fail(err)
		}
	}
	for _, ledger := range seen {
		for _, tx := range candidates[ledger] {
			ledger.insert(tx)
		}
	}
	return nil
}

// ValueSeries returns the portfolio's total market value for every day of
// the range, the raw series a charting layer consumes.
func (p *Portfolio) ValueSeries(oracle PriceOracle, rng Range) (*History[float64], error) {
	series := &History[float64]{}
	for on := range rng.Days() {
		v, err := p.Value(on, oracle)
		if err != nil {
			return nil, err
		}
		total, _ := v.Total.Decimal().Float64()
		series.Append(on, total)
	}
	return series, nil
}

// Equal reports value equality: same name, same stocks with identical
// transaction histories, same plans in the same order.
func (p *Portfolio) Equal(o *Portfolio) bool {
	if p.name != o.name || len(p.symbols) != len(o.symbols) || len(p.plans) != len(o.plans) {
		return false
	}
	for sym, ledger := range p.ledgers {
		other, ok := o.ledgers[sym]
		if !ok || !ledger.equal(other) {
			return false
		}
	}
	for i, plan := range p.plans {
		if !plan.Equal(o.plans[i]) {
			return false
		}
	}
	return true
}

// Builder assembles a portfolio with initial holdings. It is an immutable
// value: each WithStock returns a new builder, so partially applied
// builders can be shared and reused safely.
type Builder struct {
	name  string
	seeds []Order
}

// NewBuilder starts a builder for a named portfolio.
func NewBuilder(name string) Builder { return Builder{name: name} }

// WithStock adds an initial holding bought on the given date.
func (b Builder) WithStock(symbol string, volume Quantity, on Date) Builder {
	seeds := make([]Order, len(b.seeds), len(b.seeds)+1)
	copy(seeds, b.seeds)
	return Builder{name: b.name, seeds: append(seeds, Order{Symbol: symbol, On: on, Volume: volume})}
}

// Build resolves every holding through the oracle and returns the
// portfolio. Initial holdings are recorded as commission-free buys at the
// oracle's price on their date.
func (b Builder) Build(oracle PriceOracle) (*Portfolio, error) {
	p, err := New(b.name)
	if err != nil {
		return nil, err
	}
	if len(b.seeds) == 0 {
		return p, nil
	}
	if err := p.Buy(oracle, b.seeds, USDollars(0)); err != nil {
		return nil, err
	}
	return p, nil
}
