package stockfolio

// PriceOracle is the engine's window on the outside world: stock identities,
// listing windows, and closing prices. Implementations own caching and any
// nearest-trading-day search; the engine never retries a failed lookup.
type PriceOracle interface {
	// Identity returns the stock identity for a symbol, or an error wrapping
	// ErrUnsupportedSymbol when the symbol is unknown.
	Identity(symbol string) (Stock, error)

	// IPODate returns the first date the symbol was listed.
	IPODate(symbol string) (Date, error)

	// DelistingDate returns the date the symbol was delisted. ok is false
	// while the symbol is still listed.
	DelistingDate(symbol string) (delisted Date, ok bool, err error)

	// PriceOnDate returns the closing price on the given date, or the nearest
	// available trading-day price searching up to 10 days backward (forward
	// when preferFuture is set). Outside the [IPO, delisting] window the
	// price is zero rather than an error.
	PriceOnDate(symbol string, on Date, preferFuture bool) (Money, error)
}
