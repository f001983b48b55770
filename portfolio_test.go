package stockfolio

import (
	"errors"
	"testing"
)

// newFunded returns a portfolio holding 30 GOOG (fee $10) and 15 MSFT
// (fee $20), both bought on 2025-01-10.
func newFunded(t *testing.T, oracle PriceOracle) *Portfolio {
	t.Helper()
	p, err := New("Retirement")
	if err != nil {
		t.Fatal(err)
	}
	on := MustParseDate("2025-01-10")
	if err := p.Buy(oracle, []Order{{Symbol: "GOOG", On: on, Volume: Q(30)}}, USDollars(10)); err != nil {
		t.Fatalf("buy GOOG: %v", err)
	}
	if err := p.Buy(oracle, []Order{{Symbol: "MSFT", On: on, Volume: Q(15)}}, USDollars(20)); err != nil {
		t.Fatalf("buy MSFT: %v", err)
	}
	return p
}

func TestPortfolioCostBasis(t *testing.T) {
	oracle := newTestOracle()
	p := newFunded(t, oracle)

	// 30 x $1000 + $10 and 15 x $2000 + $20.
	got, err := p.CostBasis(MustParseDate("2025-06-01"), oracle)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(USDollars(60030)) {
		t.Errorf("CostBasis = %s, want $60,030.00", got)
	}

	// Selling adds only the commission, proceeds are ignored.
	if err := p.Sell(oracle, []Order{{Symbol: "GOOG", On: MustParseDate("2025-02-10"), Volume: Q(5)}}, USDollars(7)); err != nil {
		t.Fatalf("sell: %v", err)
	}
	got, err = p.CostBasis(MustParseDate("2025-06-01"), oracle)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(USDollars(60037)) {
		t.Errorf("CostBasis after sell = %s, want $60,037.00", got)
	}

	// Before the first buy the basis is zero.
	got, err = p.CostBasis(MustParseDate("2025-01-09"), oracle)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsZero() {
		t.Errorf("CostBasis before first buy = %s, want $0.00", got)
	}
}

func TestPortfolioValue(t *testing.T) {
	oracle := newTestOracle()
	p := newFunded(t, oracle)

	v, err := p.Value(MustParseDate("2025-06-01"), oracle)
	if err != nil {
		t.Fatal(err)
	}
	if !v.Total.Equal(USDollars(60000)) {
		t.Errorf("Total = %s, want $60,000.00", v.Total)
	}
	if len(v.Stocks) != 2 {
		t.Fatalf("breakdown has %d stocks, want 2", len(v.Stocks))
	}

	// Selling everything keeps the stock in the breakdown at zero.
	if err := p.Sell(oracle, []Order{{Symbol: "MSFT", On: MustParseDate("2025-02-10"), Volume: Q(15)}}, USDollars(0)); err != nil {
		t.Fatal(err)
	}
	v, err = p.Value(MustParseDate("2025-06-01"), oracle)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Stocks) != 2 {
		t.Fatalf("breakdown has %d stocks after liquidating MSFT, want 2", len(v.Stocks))
	}
	for _, sv := range v.Stocks {
		if sv.Stock.Symbol == "MSFT" && !sv.Value.IsZero() {
			t.Errorf("liquidated MSFT valued %s, want $0.00", sv.Value)
		}
	}

	if _, err := p.Value(Today().AddDays(1), oracle); !errors.Is(err, ErrFutureDate) {
		t.Errorf("Value(tomorrow) = %v, want %v", err, ErrFutureDate)
	}
}

func TestPortfolioComposition(t *testing.T) {
	oracle := newTestOracle()
	p := newFunded(t, oracle)
	if err := p.Sell(oracle, []Order{{Symbol: "MSFT", On: MustParseDate("2025-02-10"), Volume: Q(15)}}, USDollars(0)); err != nil {
		t.Fatal(err)
	}

	holdings, err := p.Composition(MustParseDate("2025-06-01"), oracle)
	if err != nil {
		t.Fatal(err)
	}
	if len(holdings) != 1 || holdings[0].Stock.Symbol != "GOOG" {
		t.Fatalf("Composition = %v, want GOOG only", holdings)
	}
	if !holdings[0].Position.Equal(Q(30)) {
		t.Errorf("GOOG position = %s, want 30", holdings[0].Position)
	}
}

func TestPortfolioBatchIsAllOrNothing(t *testing.T) {
	oracle := newTestOracle()
	p := newFunded(t, oracle)
	before, err := p.CostBasis(Today(), oracle)
	if err != nil {
		t.Fatal(err)
	}

	// The second sell oversells; the valid first one must not go through.
	err = p.Sell(oracle, []Order{
		{Symbol: "GOOG", On: MustParseDate("2025-02-10"), Volume: Q(5)},
		{Symbol: "GOOG", On: MustParseDate("2025-02-11"), Volume: Q(100)},
	}, USDollars(1))
	if !errors.Is(err, ErrNegativePosition) {
		t.Fatalf("oversell batch = %v, want %v", err, ErrNegativePosition)
	}
	after, err := p.CostBasis(Today(), oracle)
	if err != nil {
		t.Fatal(err)
	}
	if !after.Equal(before) {
		t.Errorf("failed batch changed cost basis: %s -> %s", before, after)
	}
	if got := p.ledgers["GOOG"].Position(Today()); !got.Equal(Q(30)) {
		t.Errorf("failed batch changed position: %s", got)
	}
}

func TestPortfolioFailedBatchAddsNoLedger(t *testing.T) {
	oracle := newTestOracle()
	p := newFunded(t, oracle)

	err := p.Buy(oracle, []Order{
		{Symbol: "GOOG", On: MustParseDate("2025-02-10"), Volume: Q(1)},
		{Symbol: "NOPE", On: MustParseDate("2025-02-10"), Volume: Q(1)},
	}, USDollars(0))
	if !errors.Is(err, ErrUnsupportedSymbol) {
		t.Fatalf("batch with unknown symbol = %v, want %v", err, ErrUnsupportedSymbol)
	}
	if len(p.symbols) != 2 {
		t.Errorf("failed batch left symbols %v, want GOOG and MSFT only", p.symbols)
	}
}

func TestPortfolioSellPrefixCheck(t *testing.T) {
	oracle := newTestOracle()
	p := newFunded(t, oracle) // 30 GOOG bought on 2025-01-10

	// The position today could absorb the sell, but on its backdated
	// effective date nothing was held yet.
	err := p.Sell(oracle, []Order{
		{Symbol: "GOOG", On: MustParseDate("2025-01-05"), Volume: Q(5)},
	}, USDollars(0))
	if !errors.Is(err, ErrNegativePosition) {
		t.Errorf("backdated sell = %v, want %v", err, ErrNegativePosition)
	}

	// Orders are replayed in date order, not batch order.
	err = p.Sell(oracle, []Order{
		{Symbol: "GOOG", On: MustParseDate("2025-02-01"), Volume: Q(20)},
		{Symbol: "GOOG", On: MustParseDate("2025-03-01"), Volume: Q(20)},
	}, USDollars(0))
	if !errors.Is(err, ErrNegativePosition) {
		t.Errorf("oversell batch = %v, want %v", err, ErrNegativePosition)
	}
	if got := p.ledgers["GOOG"].Position(Today()); !got.Equal(Q(30)) {
		t.Errorf("failed batches changed position: %s", got)
	}
}

func TestPortfolioRebalance(t *testing.T) {
	oracle := newTestOracle()
	p := newFunded(t, oracle) // $30,000 GOOG + $30,000 MSFT
	asOf := MustParseDate("2025-06-01")

	err := p.Rebalance(oracle, asOf, []Weighting{
		{Symbol: "GOOG", Percent: Pct(25)},
		{Symbol: "MSFT", Percent: Pct(75)},
	}, USDollars(3))
	if err != nil {
		t.Fatalf("Rebalance: %v", err)
	}

	// GOOG shrinks to $15,000 (15 shares), MSFT grows to $45,000 (22.5).
	if got := p.ledgers["GOOG"].Position(asOf); !got.Equal(Q(15)) {
		t.Errorf("GOOG position = %s, want 15", got)
	}
	if got := p.ledgers["MSFT"].Position(asOf); !got.Equal(Q(22.5)) {
		t.Errorf("MSFT position = %s, want 22.5", got)
	}

	v, err := p.Value(asOf, oracle)
	if err != nil {
		t.Fatal(err)
	}
	if !v.Total.Equal(USDollars(60000)) {
		t.Errorf("Total after rebalance = %s, want $60,000.00", v.Total)
	}

	// The buy adds its principal and both adjustments add the fee.
	basis, err := p.CostBasis(asOf, oracle)
	if err != nil {
		t.Fatal(err)
	}
	if want := USDollars(60030 + 15000 + 3 + 3); !basis.Equal(want) {
		t.Errorf("CostBasis after rebalance = %s, want %s", basis, want)
	}
}

func TestPortfolioRebalanceValidatesTargets(t *testing.T) {
	oracle := newTestOracle()
	p := newFunded(t, oracle)
	asOf := MustParseDate("2025-06-01")

	testCases := []struct {
		name    string
		targets []Weighting
		wantErr error
	}{
		{"empty", nil, ErrEmptyInput},
		{"under 100", []Weighting{{Symbol: "GOOG", Percent: Pct(99)}}, ErrInvalidWeights},
		{"zero weight", []Weighting{
			{Symbol: "GOOG", Percent: Pct(100)},
			{Symbol: "MSFT", Percent: Pct(0)},
		}, ErrInvalidWeights},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := p.Rebalance(oracle, asOf, tc.targets, USDollars(0)); !errors.Is(err, tc.wantErr) {
				t.Errorf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestPortfolioPlans(t *testing.T) {
	oracle := newTestOracle()

	t.Run("future plan pends and costs nothing yet", func(t *testing.T) {
		p, err := New("DCA")
		if err != nil {
			t.Fatal(err)
		}
		plan, err := NewRecurringPlan(Today().AddDays(10), USDollars(1000), USDollars(0),
			fiftyFifty(), Interval{Unit: Month, N: 1}, Date{})
		if err != nil {
			t.Fatal(err)
		}
		if err := p.AddPlan(oracle, plan); err != nil {
			t.Fatalf("AddPlan: %v", err)
		}

		pending := p.PendingInvestments(Today())
		if len(pending) != 2 {
			t.Fatalf("pending = %v, want one entry per symbol", pending)
		}
		for _, pi := range pending {
			if !pi.Amount.Equal(USDollars(500)) {
				t.Errorf("%s pends %s, want $500.00", pi.Symbol, pi.Amount)
			}
		}

		basis, err := p.CostBasis(Today(), oracle)
		if err != nil {
			t.Fatal(err)
		}
		if !basis.IsZero() {
			t.Errorf("future plan contributed %s to cost basis, want $0.00", basis)
		}
	})

	t.Run("past occurrences count everywhere", func(t *testing.T) {
		p, err := New("DCA")
		if err != nil {
			t.Fatal(err)
		}
		plan, err := NewRecurringPlan(MustParseDate("2025-01-15"), USDollars(1000), USDollars(5),
			fiftyFifty(), Interval{Unit: Month, N: 1}, MustParseDate("2025-03-15"))
		if err != nil {
			t.Fatal(err)
		}
		if err := p.AddPlan(oracle, plan); err != nil {
			t.Fatal(err)
		}

		asOf := MustParseDate("2025-06-01")
		// Three occurrences of $500 per symbol: 1.5 GOOG, 0.75 MSFT.
		holdings, err := p.Composition(asOf, oracle)
		if err != nil {
			t.Fatal(err)
		}
		if len(holdings) != 2 {
			t.Fatalf("Composition = %v, want both symbols", holdings)
		}
		for _, h := range holdings {
			switch h.Stock.Symbol {
			case "GOOG":
				if !h.Position.Equal(Q(1.5)) {
					t.Errorf("GOOG position = %s, want 1.5", h.Position)
				}
			case "MSFT":
				if !h.Position.Equal(Q(0.75)) {
					t.Errorf("MSFT position = %s, want 0.75", h.Position)
				}
			}
		}

		// 6 buys of $500 plus 6 fees of $5.
		basis, err := p.CostBasis(asOf, oracle)
		if err != nil {
			t.Fatal(err)
		}
		if !basis.Equal(USDollars(3030)) {
			t.Errorf("CostBasis = %s, want $3,030.00", basis)
		}

		// Asking twice changes nothing: derived buys are never stored.
		again, err := p.CostBasis(asOf, oracle)
		if err != nil {
			t.Fatal(err)
		}
		if !again.Equal(basis) {
			t.Errorf("CostBasis not idempotent: %s then %s", basis, again)
		}
		for _, sym := range p.symbols {
			if p.ledgers[sym].Len() != 0 {
				t.Errorf("%s ledger has %d stored transactions, want 0", sym, p.ledgers[sym].Len())
			}
		}

		v, err := p.Value(asOf, oracle)
		if err != nil {
			t.Fatal(err)
		}
		if !v.Total.Equal(USDollars(3000)) {
			t.Errorf("Value = %s, want $3,000.00", v.Total)
		}
	})

	t.Run("plan before IPO is rejected", func(t *testing.T) {
		p, err := New("DCA")
		if err != nil {
			t.Fatal(err)
		}
		plan, err := NewOneTimePlan(MustParseDate("2000-01-01"), USDollars(1000), USDollars(0),
			[]Weighting{{Symbol: "GOOG", Percent: Pct(100)}})
		if err != nil {
			t.Fatal(err)
		}
		if err := p.AddPlan(oracle, plan); !errors.Is(err, ErrOutOfListingWindow) {
			t.Errorf("AddPlan = %v, want %v", err, ErrOutOfListingWindow)
		}
		if len(p.symbols) != 0 {
			t.Errorf("rejected plan left symbols %v", p.symbols)
		}
	})
}

func TestPortfolioValueSeries(t *testing.T) {
	oracle := newTestOracle()
	p := newFunded(t, oracle)

	series, err := p.ValueSeries(oracle, NewRange(MustParseDate("2025-01-09"), MustParseDate("2025-01-12")))
	if err != nil {
		t.Fatal(err)
	}
	if series.Len() != 4 {
		t.Fatalf("series has %d points, want 4", series.Len())
	}
	if v, _ := series.Get(MustParseDate("2025-01-09")); v != 0 {
		t.Errorf("value the day before the buys = %v, want 0", v)
	}
	if v, _ := series.Get(MustParseDate("2025-01-12")); v != 60000 {
		t.Errorf("value after the buys = %v, want 60000", v)
	}
}

func TestPortfolioBuilder(t *testing.T) {
	oracle := newTestOracle()
	on := MustParseDate("2025-01-10")

	base := NewBuilder("Retirement").WithStock("GOOG", Q(30), on)
	grown := base.WithStock("MSFT", Q(15), on)

	p, err := grown.Build(oracle)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	basis, err := p.CostBasis(Today(), oracle)
	if err != nil {
		t.Fatal(err)
	}
	// Seed holdings are commission free.
	if !basis.Equal(USDollars(60000)) {
		t.Errorf("CostBasis = %s, want $60,000.00", basis)
	}

	// The base builder is a value: growing it did not change it.
	small, err := base.Build(oracle)
	if err != nil {
		t.Fatal(err)
	}
	if len(small.symbols) != 1 {
		t.Errorf("base builder built %v, want GOOG only", small.symbols)
	}

	if _, err := NewBuilder("bad!name").Build(oracle); !errors.Is(err, ErrInvalidName) {
		t.Errorf("invalid name = %v, want %v", err, ErrInvalidName)
	}
}

func TestPortfolioEqual(t *testing.T) {
	oracle := newTestOracle()
	a := newFunded(t, oracle)
	b := newFunded(t, oracle)
	if !a.Equal(b) {
		t.Error("identically built portfolios should be equal")
	}

	if err := b.Sell(oracle, []Order{{Symbol: "GOOG", On: MustParseDate("2025-02-10"), Volume: Q(1)}}, USDollars(0)); err != nil {
		t.Fatal(err)
	}
	if a.Equal(b) {
		t.Error("portfolios with different histories should not be equal")
	}

	c := newFunded(t, oracle)
	c.name = "Other"
	if a.Equal(c) {
		t.Error("portfolios with different names should not be equal")
	}
}
