package period

import "testing"

func TestYearMonth(t *testing.T) {
	tests := []struct {
		label string
		year  int
		month int
		ok    bool
	}{
		{"2025年3月分(4月17日支給)", 2025, 3, true},
		{"2025年 12月分", 2025, 12, true},
		{"２０２５年４月分", 2025, 4, true},
		{"2025-07", 2025, 7, true},
		{"2025-7-15", 2025, 7, true},
		{"2025年13月分", 0, 0, false},
		{"3月分", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tt := range tests {
		y, m, ok := YearMonth(tt.label)
		if ok != tt.ok || y != tt.year || m != tt.month {
			t.Fatalf("YearMonth(%q): expected (%d, %d, %v), got (%d, %d, %v)", tt.label, tt.year, tt.month, tt.ok, y, m, ok)
		}
	}
}

func TestMatchesYear(t *testing.T) {
	if !MatchesYear("2025年3月分", 2025) {
		t.Fatalf("expected 2025年 label to match")
	}
	if !MatchesYear("2025-03", 2025) {
		t.Fatalf("expected ISO label to match")
	}
	if MatchesYear("2024年12月分", 2025) {
		t.Fatalf("expected other year not to match")
	}
	if MatchesYear("令和7年3月分", 2025) {
		t.Fatalf("expected era label not to match")
	}
}

func TestPaymentFragment(t *testing.T) {
	tests := map[string]string{
		"2025年3月分(4月17日支給)":  "4月17日支給",
		"2025年3月分（4月17日支給）": "4月17日支給",
		"2025年3月分":            "2025年3月分",
	}
	for in, want := range tests {
		if got := PaymentFragment(in); got != want {
			t.Fatalf("PaymentFragment(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestCompactRange(t *testing.T) {
	if got := CompactRange("2025-03-01", "2025-03-31"); got != "03/01～03/31" {
		t.Fatalf("expected 03/01～03/31, got %q", got)
	}
	if got := CompactRange("3月1日", "3月31日"); got != "3月1日～3月31日" {
		t.Fatalf("expected text bounds to pass through, got %q", got)
	}
	if got := CompactRange("2025-03-01", ""); got != "" {
		t.Fatalf("expected empty range, got %q", got)
	}
}
