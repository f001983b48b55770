package stockfolio

import (
	"testing"
	"time"
)

func TestAddMonthsClampsToMonthEnd(t *testing.T) {
	testCases := []struct {
		name   string
		start  string
		months int
		want   string
	}{
		{"jan 31 plus one", "2025-01-31", 1, "2025-02-28"},
		{"jan 31 plus one leap", "2024-01-31", 1, "2024-02-29"},
		{"mar 31 plus one", "2025-03-31", 1, "2025-04-30"},
		{"jan 31 plus two keeps day", "2025-01-31", 2, "2025-03-31"},
		{"feb 29 plus a year", "2024-02-29", 12, "2025-02-28"},
		{"mid month is untouched", "2025-01-15", 1, "2025-02-15"},
		{"backward", "2025-03-31", -1, "2025-02-28"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := MustParseDate(tc.start).AddMonths(tc.months)
			if got.String() != tc.want {
				t.Errorf("%s + %d months = %s, want %s", tc.start, tc.months, got, tc.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	testCases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2025-07-01", want: "2025-07-01"},
		{in: "2025-7-1", want: "2025-07-01"},
		{in: " 2025-07-01 ", want: "2025-07-01"},
		{in: "07/01/2025", wantErr: true},
		{in: "not a date", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDate(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseDate(%q) = %s, want error", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q): %v", tc.in, err)
			}
			if got.String() != tc.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}
}

func TestNewDateNormalizes(t *testing.T) {
	got := NewDate(2025, time.January, 32)
	if want := "2025-02-01"; got.String() != want {
		t.Errorf("NewDate(2025, January, 32) = %s, want %s", got, want)
	}
}

func TestRangeDays(t *testing.T) {
	rng := NewRange(MustParseDate("2025-02-27"), MustParseDate("2025-03-02"))
	var days []string
	for on := range rng.Days() {
		days = append(days, on.String())
	}
	want := []string{"2025-02-27", "2025-02-28", "2025-03-01", "2025-03-02"}
	if len(days) != len(want) {
		t.Fatalf("got %d days %v, want %d", len(days), days, len(want))
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("day %d = %s, want %s", i, days[i], want[i])
		}
	}
	if !rng.Contains(MustParseDate("2025-02-28")) {
		t.Error("range should contain 2025-02-28")
	}
	if rng.Contains(MustParseDate("2025-03-03")) {
		t.Error("range should not contain 2025-03-03")
	}
}

func TestRangeSwapsReversedBounds(t *testing.T) {
	rng := NewRange(MustParseDate("2025-03-02"), MustParseDate("2025-02-27"))
	if rng.From.After(rng.To) {
		t.Errorf("NewRange did not swap bounds: %s..%s", rng.From, rng.To)
	}
}

func TestHistory(t *testing.T) {
	var h History[float64]
	h.Append(MustParseDate("2025-01-03"), 3)
	h.Append(MustParseDate("2025-01-01"), 1)
	h.Append(MustParseDate("2025-01-02"), 2)
	h.Append(MustParseDate("2025-01-02"), 20) // replaces

	if got := h.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
	if v, ok := h.Get(MustParseDate("2025-01-02")); !ok || v != 20 {
		t.Errorf("Get(jan 2) = %v %v, want 20 true", v, ok)
	}
	if v, ok := h.ValueAsOf(MustParseDate("2025-01-04")); !ok || v != 3 {
		t.Errorf("ValueAsOf(jan 4) = %v %v, want 3 true", v, ok)
	}
	if _, ok := h.ValueAsOf(MustParseDate("2024-12-31")); ok {
		t.Error("ValueAsOf before the first entry should not be found")
	}

	var prev Date
	for on := range h.Values() {
		if on.Before(prev) {
			t.Fatalf("history out of order at %s", on)
		}
		prev = on
	}
}
