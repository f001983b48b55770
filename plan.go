package stockfolio

import (
	"encoding/json"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// IntervalUnit is the calendar unit of a recurrence interval.
type IntervalUnit string

const (
	Day   IntervalUnit = "day"
	Week  IntervalUnit = "week"
	Month IntervalUnit = "month"
	Year  IntervalUnit = "year"
)

// Interval is a recurrence step: every N units.
type Interval struct {
	Unit IntervalUnit
	N    int
}

func (i Interval) String() string {
	if i.N == 1 {
		return "every " + string(i.Unit)
	}
	return fmt.Sprintf("every %d %ss", i.N, i.Unit)
}

// short returns the parseable "2w" notation.
func (i Interval) short() string { return fmt.Sprintf("%d%c", i.N, i.Unit[0]) }

func (i Interval) validate() error {
	switch i.Unit {
	case Day, Week, Month, Year:
	default:
		return fmt.Errorf("%w: unknown unit %q", ErrInvalidInterval, i.Unit)
	}
	if i.N <= 0 {
		return fmt.Errorf("%w: must repeat at least every 1 %s", ErrInvalidInterval, i.Unit)
	}
	return nil
}

// ParseInterval parses the short interval notation: "1d", "2w", "1m", "1y".
func ParseInterval(s string) (Interval, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if len(s) < 2 {
		return Interval{}, fmt.Errorf("%w: %q", ErrInvalidInterval, s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return Interval{}, fmt.Errorf("%w: %q: %v", ErrInvalidInterval, s, err)
	}
	var unit IntervalUnit
	switch s[len(s)-1] {
	case 'd':
		unit = Day
	case 'w':
		unit = Week
	case 'm':
		unit = Month
	case 'y':
		unit = Year
	default:
		return Interval{}, fmt.Errorf("%w: %q: unknown unit suffix", ErrInvalidInterval, s)
	}
	iv := Interval{Unit: unit, N: n}
	return iv, iv.validate()
}

// Weighting assigns a slice of an investment amount to a symbol.
type Weighting struct {
	Symbol  string
	Percent Percent
}

// RecurringPlan is a dollar-cost investment schedule: a fixed amount split
// over weighted symbols, invested on a start date and optionally repeated at
// a calendar interval. A plan is immutable once created.
//
// Plans are never written into ledgers. Position, cost and value queries
// derive the plan's buys on the fly from the occurrences up to the query
// date, so re-evaluating a plan is idempotent by construction.
type RecurringPlan struct {
	start       Date
	amount      Money
	feePerStock Money
	weights     []Weighting
	recurring   bool
	every       Interval
	end         Date // zero when open-ended
}

// NewOneTimePlan creates a plan that invests once, on start.
func NewOneTimePlan(start Date, amount, feePerStock Money, weights []Weighting) (RecurringPlan, error) {
	p := RecurringPlan{start: start, amount: amount, feePerStock: feePerStock, weights: cloneWeights(weights)}
	return p, p.validate()
}

// NewRecurringPlan creates a plan that invests on start and then repeats at
// the given interval, until end if end is non-zero.
func NewRecurringPlan(start Date, amount, feePerStock Money, weights []Weighting, every Interval, end Date) (RecurringPlan, error) {
	p := RecurringPlan{
		start:       start,
		amount:      amount,
		feePerStock: feePerStock,
		weights:     cloneWeights(weights),
		recurring:   true,
		every:       every,
		end:         end,
	}
	return p, p.validate()
}

func cloneWeights(weights []Weighting) []Weighting {
	return append([]Weighting{}, weights...)
}

func (p RecurringPlan) validate() error {
	if !p.amount.IsPositive() {
		return fmt.Errorf("%w: plan amount %s must be positive", ErrInvalidAmount, p.amount)
	}
	if p.feePerStock.IsNegative() {
		return fmt.Errorf("%w: plan fee %s cannot be negative", ErrInvalidAmount, p.feePerStock)
	}
	if len(p.weights) == 0 {
		return fmt.Errorf("%w: plan has no weights", ErrEmptyInput)
	}
	var sum Percent
	for _, w := range p.weights {
		if err := ValidateSymbol(w.Symbol); err != nil {
			return err
		}
		if !w.Percent.IsPositive() {
			return fmt.Errorf("%w: weight for %s is %s, must be positive", ErrInvalidWeights, w.Symbol, w.Percent)
		}
		sum = sum.Add(w.Percent)
	}
	if !sum.IsWhole() {
		return fmt.Errorf("%w: weights sum to %s, want 100%%", ErrInvalidWeights, sum)
	}
	if p.recurring {
		if err := p.every.validate(); err != nil {
			return err
		}
		if !p.end.IsZero() && p.end.Before(p.start) {
			return fmt.Errorf("%w: plan ends %s before it starts %s", ErrStartAfterEnd, p.end, p.start)
		}
	}
	return nil
}

// Start returns the date of the first investment.
func (p RecurringPlan) Start() Date { return p.start }

// Amount returns the total invested per occurrence.
func (p RecurringPlan) Amount() Money { return p.amount }

// FeePerStock returns the commission charged per symbol per occurrence.
func (p RecurringPlan) FeePerStock() Money { return p.feePerStock }

// Weights returns the per-symbol split of the amount.
func (p RecurringPlan) Weights() []Weighting { return cloneWeights(p.weights) }

// IsRecurring reports whether the plan repeats.
func (p RecurringPlan) IsRecurring() bool { return p.recurring }

// Every returns the recurrence interval of a recurring plan.
func (p RecurringPlan) Every() Interval { return p.every }

// End returns the last date the plan may invest. ok is false when the plan
// is open-ended or non-recurring.
func (p RecurringPlan) End() (end Date, ok bool) { return p.end, p.recurring && !p.end.IsZero() }

func (p RecurringPlan) Equal(o RecurringPlan) bool {
	if p.start != o.start || !p.amount.Equal(o.amount) || !p.feePerStock.Equal(o.feePerStock) {
		return false
	}
	if p.recurring != o.recurring || p.every != o.every || p.end != o.end {
		return false
	}
	if len(p.weights) != len(o.weights) {
		return false
	}
	for i, w := range p.weights {
		if w.Symbol != o.weights[i].Symbol || !w.Percent.Equal(o.weights[i].Percent) {
			return false
		}
	}
	return true
}

// occurrence returns the date of the k-th investment. It always advances
// from the start date so that a plan started on the 31st keeps clamping to
// month ends instead of drifting (Jan 31, Feb 28, Mar 31, ...).
func (p RecurringPlan) occurrence(k int) Date {
	if k == 0 {
		return p.start
	}
	steps := k * p.every.N
	switch p.every.Unit {
	case Day:
		return p.start.AddDays(steps)
	case Week:
		return p.start.AddDays(7 * steps)
	case Month:
		return p.start.AddMonths(steps)
	default: // Year
		return p.start.AddYears(steps)
	}
}

// Occurrences returns the investment dates up to and including until, in
// chronological order. The sequence is lazy: an open-ended plan yields only
// the occurrences the caller's bound reaches.
func (p RecurringPlan) Occurrences(until Date) iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for k := 0; ; k++ {
			on := p.occurrence(k)
			if on.After(until) {
				return
			}
			if end, ok := p.End(); ok && on.After(end) {
				return
			}
			if !yield(on) {
				return
			}
			if !p.recurring {
				return
			}
		}
	}
}

// Materialized derives the buy transactions the plan implies up to and
// including asOf, grouped by symbol. Each occurrence buys, per symbol,
// amount x weight / price shares floored to two decimals, with the plan's
// per-stock fee. Occurrences where the oracle has no price (the symbol was
// delisted) are skipped for that symbol.
func (p RecurringPlan) Materialized(oracle PriceOracle, asOf Date) (map[string][]Transaction, error) {
	txs := make(map[string][]Transaction)
	for on := range p.Occurrences(asOf) {
		for _, w := range p.weights {
			// A scheduled buy executes on the next trading day when the
			// occurrence falls on a market holiday.
			price, err := oracle.PriceOnDate(w.Symbol, on, true)
			if err != nil {
				return nil, err
			}
			if price.IsZero() {
				continue
			}
			volume := w.Percent.Of(p.amount).DivPrice(price).FloorToCent()
			if volume.IsZero() {
				continue
			}
			txs[w.Symbol] = append(txs[w.Symbol], Transaction{
				date:   on,
				volume: volume,
				price:  price,
				fee:    p.feePerStock,
			})
		}
	}
	return txs, nil
}

// PendingInvestment is a scheduled buy that has not happened yet.
type PendingInvestment struct {
	Symbol string
	On     Date
	Amount Money
}

// Pending returns, per weighted symbol, the next scheduled investment
// strictly after today. A non-recurring plan pends only while its start is
// still in the future; a bounded recurring plan stops pending past its end.
func (p RecurringPlan) Pending(today Date) []PendingInvestment {
	next, ok := p.nextOccurrence(today)
	if !ok {
		return nil
	}
	pending := make([]PendingInvestment, 0, len(p.weights))
	for _, w := range p.weights {
		pending = append(pending, PendingInvestment{
			Symbol: w.Symbol,
			On:     next,
			Amount: w.Percent.Of(p.amount),
		})
	}
	return pending
}

// planJSON is the wire form of a plan. Amounts travel as decimal strings.
type planJSON struct {
	Start     Date         `json:"start"`
	Amount    string       `json:"amount"`
	Fee       string       `json:"feePerStock"`
	Weights   []weightJSON `json:"weights"`
	Recurring bool         `json:"recurring"`
	Every     string       `json:"every,omitempty"`
	End       *Date        `json:"end,omitempty"`
}

type weightJSON struct {
	Symbol  string `json:"symbol"`
	Percent string `json:"percent"`
}

// MarshalJSON implements the json.Marshaler interface for RecurringPlan.
func (p RecurringPlan) MarshalJSON() ([]byte, error) {
	out := planJSON{
		Start:     p.start,
		Amount:    p.amount.Decimal().String(),
		Fee:       p.feePerStock.Decimal().String(),
		Recurring: p.recurring,
	}
	for _, w := range p.weights {
		out.Weights = append(out.Weights, weightJSON{Symbol: w.Symbol, Percent: w.Percent.Decimal().String()})
	}
	if p.recurring {
		out.Every = p.every.short()
		if !p.end.IsZero() {
			end := p.end
			out.End = &end
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements the json.Unmarshaler interface for RecurringPlan.
// The decoded plan goes through the same validation as a newly created one.
func (p *RecurringPlan) UnmarshalJSON(data []byte) error {
	var in planJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(in.Amount)
	if err != nil {
		return fmt.Errorf("plan amount %q: %w", in.Amount, err)
	}
	fee, err := decimal.NewFromString(in.Fee)
	if err != nil {
		return fmt.Errorf("plan fee %q: %w", in.Fee, err)
	}
	var weights []Weighting
	for _, w := range in.Weights {
		pct, err := decimal.NewFromString(w.Percent)
		if err != nil {
			return fmt.Errorf("plan weight for %s: %q: %w", w.Symbol, w.Percent, err)
		}
		weights = append(weights, Weighting{Symbol: w.Symbol, Percent: Pct(pct)})
	}

	var plan RecurringPlan
	if in.Recurring {
		every, err := ParseInterval(in.Every)
		if err != nil {
			return err
		}
		var end Date
		if in.End != nil {
			end = *in.End
		}
		plan, err = NewRecurringPlan(in.Start, M(amount, USD), M(fee, USD), weights, every, end)
		if err != nil {
			return err
		}
	} else {
		plan, err = NewOneTimePlan(in.Start, M(amount, USD), M(fee, USD), weights)
		if err != nil {
			return err
		}
	}
	*p = plan
	return nil
}

func (p RecurringPlan) nextOccurrence(today Date) (Date, bool) {
	for k := 0; ; k++ {
		on := p.occurrence(k)
		if end, ok := p.End(); ok && on.After(end) {
			return Date{}, false
		}
		if on.After(today) {
			return on, true
		}
		if !p.recurring {
			return Date{}, false
		}
	}
}
