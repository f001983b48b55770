package stockfolio

import "testing"

func TestMoneyString(t *testing.T) {
	testCases := []struct {
		value float64
		want  string
	}{
		{1000, "$1,000.00"},
		{0.5, "$0.50"},
		{60030, "$60,030.00"},
		{-12.34, "-$12.34"},
	}
	for _, tc := range testCases {
		if got := USDollars(tc.value).String(); got != tc.want {
			t.Errorf("USDollars(%v).String() = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	price := USDollars(1000)
	if got := price.Mul(Q(30)); !got.Equal(USDollars(30000)) {
		t.Errorf("1000 x 30 = %s, want $30,000.00", got)
	}
	if got := USDollars(500).DivPrice(price); !got.Equal(Q(0.5)) {
		t.Errorf("$500 / $1000 = %s shares, want 0.5", got)
	}
	if got := USDollars(30010).Add(USDollars(30020)); !got.Equal(USDollars(60030)) {
		t.Errorf("30010 + 30020 = %s, want $60,030.00", got)
	}
}

func TestPercentOf(t *testing.T) {
	if got := Pct(50).Of(USDollars(1000)); !got.Equal(USDollars(500)) {
		t.Errorf("50%% of $1000 = %s, want $500.00", got)
	}
	if got := Pct(33).Of(USDollars(100)); !got.Equal(USDollars(33)) {
		t.Errorf("33%% of $100 = %s, want $33.00", got)
	}
	sum := Pct(50).Add(Pct(25)).Add(Pct(25))
	if !sum.IsWhole() {
		t.Errorf("50+25+25 = %s, want 100%%", sum)
	}
}

func TestQuantityFloorToCent(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"0.519", "0.51"},
		{"1.999", "1.99"},
		{"3", "3"},
		{"0.5", "0.5"},
	}
	for _, tc := range testCases {
		q, err := ParseQuantity(tc.in)
		if err != nil {
			t.Fatalf("ParseQuantity(%q): %v", tc.in, err)
		}
		if got := q.FloorToCent().String(); got != tc.want {
			t.Errorf("FloorToCent(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}
