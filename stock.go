package stockfolio

import (
	"fmt"
	"regexp"
)

// symbolRegex checks the ticker symbol charset: uppercase letters, digits,
// dots and dashes (e.g. "GOOG", "BRK.B").
var symbolRegex = regexp.MustCompile(`^[A-Z0-9.\-]+$`)

// nameRegex checks the word-and-space charset used for portfolio names.
var nameRegex = regexp.MustCompile(`^[A-Za-z0-9_ ]+$`)

// Stock identifies a tradeable security. It is immutable: created once from
// the price oracle's listing data and never mutated.
type Stock struct {
	Symbol   string
	Name     string
	Exchange string
}

// NewStock creates a stock identity after validating the symbol.
func NewStock(symbol, name, exchange string) (Stock, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return Stock{}, err
	}
	return Stock{Symbol: symbol, Name: name, Exchange: exchange}, nil
}

// Equal reports whether two identities designate the same underlying
// security. This is the single, explicit comparison used everywhere:
// symbol, name and exchange must all match.
func (s Stock) Equal(o Stock) bool {
	return s.Symbol == o.Symbol && s.Name == o.Name && s.Exchange == o.Exchange
}

func (s Stock) String() string {
	return fmt.Sprintf("%s (%s, %s)", s.Symbol, s.Name, s.Exchange)
}

// ValidateSymbol checks the ticker symbol format.
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("%w: symbol is empty", ErrUnsupportedSymbol)
	}
	if !symbolRegex.MatchString(symbol) {
		return fmt.Errorf("%w: symbol %q must match %s", ErrUnsupportedSymbol, symbol, symbolRegex)
	}
	return nil
}

// ValidateName checks a portfolio name against the word-and-space charset.
func ValidateName(name string) error {
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("%w: portfolio name %q must match %s", ErrInvalidName, name, nameRegex)
	}
	return nil
}
