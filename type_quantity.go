package stockfolio

import "github.com/shopspring/decimal"

// Quantity represents a number of shares. It is signed in transactions:
// positive for buys, negative for sells.
type Quantity struct {
	value decimal.Decimal
}

// Q creates a Quantity.
func Q[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Quantity {
	return Quantity{value: newDecimal(value)}
}

// ParseQuantity parses a Quantity from its decimal string representation.
func ParseQuantity(s string) (Quantity, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{value: v}, nil
}

func (q Quantity) Equal(p Quantity) bool       { return q.value.Equal(p.value) }
func (q Quantity) LessThan(p Quantity) bool    { return q.value.LessThan(p.value) }
func (q Quantity) GreaterThan(p Quantity) bool { return q.value.GreaterThan(p.value) }
func (q Quantity) Div(p Quantity) Quantity     { return Quantity{value: q.value.Div(p.value)} }
func (q Quantity) Mul(p Quantity) Quantity     { return Quantity{value: q.value.Mul(p.value)} }
func (q Quantity) Add(p Quantity) Quantity     { return Quantity{value: q.value.Add(p.value)} }
func (q Quantity) Sub(p Quantity) Quantity     { return Quantity{value: q.value.Sub(p.value)} }
func (q Quantity) Neg() Quantity               { return Quantity{value: q.value.Neg()} }
func (q Quantity) IsNegative() bool            { return q.value.IsNegative() }
func (q Quantity) IsPositive() bool            { return q.value.IsPositive() }
func (q Quantity) IsZero() bool                { return q.value.IsZero() }
func (q Quantity) String() string              { return q.value.String() }

// FloorToCent truncates the quantity down to two decimal places. Scheduled
// investments buy fractional shares at that granularity.
func (q Quantity) FloorToCent() Quantity { return Quantity{value: q.value.RoundFloor(2)} }

// Decimal returns the raw decimal value.
func (q Quantity) Decimal() decimal.Decimal { return q.value }

// Percent represents a percentage, e.g. 50 for 50%.
type Percent struct {
	value decimal.Decimal
}

// Pct creates a Percent.
func Pct[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Percent {
	return Percent{value: newDecimal(value)}
}

var oneHundred = decimal.NewFromInt(100)

func (p Percent) Equal(q Percent) bool { return p.value.Equal(q.value) }
func (p Percent) IsPositive() bool     { return p.value.IsPositive() }
func (p Percent) Add(q Percent) Percent {
	return Percent{value: p.value.Add(q.value)}
}

// IsWhole reports whether the percentage is exactly 100%.
func (p Percent) IsWhole() bool { return p.value.Equal(oneHundred) }

// Of returns the given fraction of an amount of money: Pct(50).Of($10) is $5.
func (p Percent) Of(m Money) Money {
	return Money{value: m.value.Mul(p.value).Div(oneHundred), cur: m.cur}
}

func (p Percent) String() string { return p.value.String() + "%" }

// Decimal returns the raw decimal value, e.g. 50 for 50%.
func (p Percent) Decimal() decimal.Decimal { return p.value }
