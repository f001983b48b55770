package stockfolio

import "fmt"

// memOracle is an in-memory PriceOracle for tests: a few well-known
// listings with constant prices, optional per-day quotes and listing
// windows.
type memOracle struct {
	listings map[string]*memListing
}

type memListing struct {
	stock    Stock
	ipo      Date
	delisted Date
	price    Money          // constant price inside the listing window
	quotes   History[Money] // per-day overrides, win over price
}

// newTestOracle returns an oracle knowing GOOG at $1000 and MSFT at $2000.
func newTestOracle() *memOracle {
	o := &memOracle{listings: make(map[string]*memListing)}
	o.list(Stock{Symbol: "GOOG", Name: "Alphabet Inc", Exchange: "NASDAQ"}, MustParseDate("2004-08-19"), USDollars(1000))
	o.list(Stock{Symbol: "MSFT", Name: "Microsoft Corp", Exchange: "NASDAQ"}, MustParseDate("1986-03-13"), USDollars(2000))
	return o
}

func (o *memOracle) list(stock Stock, ipo Date, price Money) *memListing {
	l := &memListing{stock: stock, ipo: ipo, price: price}
	o.listings[stock.Symbol] = l
	return l
}

// quote records a price for one specific day.
func (l *memListing) quote(on Date, price Money) { l.quotes.Append(on, price) }

func (o *memOracle) lookup(symbol string) (*memListing, error) {
	l, ok := o.listings[symbol]
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol, ErrUnsupportedSymbol)
	}
	return l, nil
}

func (o *memOracle) Identity(symbol string) (Stock, error) {
	l, err := o.lookup(symbol)
	if err != nil {
		return Stock{}, err
	}
	return l.stock, nil
}

func (o *memOracle) IPODate(symbol string) (Date, error) {
	l, err := o.lookup(symbol)
	if err != nil {
		return Date{}, err
	}
	return l.ipo, nil
}

func (o *memOracle) DelistingDate(symbol string) (Date, bool, error) {
	l, err := o.lookup(symbol)
	if err != nil {
		return Date{}, false, err
	}
	return l.delisted, !l.delisted.IsZero(), nil
}

func (o *memOracle) PriceOnDate(symbol string, on Date, preferFuture bool) (Money, error) {
	l, err := o.lookup(symbol)
	if err != nil {
		return Money{}, err
	}
	if on.Before(l.ipo) || (!l.delisted.IsZero() && on.After(l.delisted)) {
		return USDollars(0), nil
	}
	step := -1
	if preferFuture {
		step = 1
	}
	if l.quotes.Len() > 0 {
		for i := 0; i <= 10; i++ {
			if m, ok := l.quotes.Get(on.AddDays(step * i)); ok {
				return m, nil
			}
		}
	}
	return l.price, nil
}

var _ PriceOracle = (*memOracle)(nil)
