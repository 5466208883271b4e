package core

import "testing"

func TestParsePeriod(t *testing.T) {
	cases := []struct {
		in   string
		want Period
		ok   bool
	}{
		{"2024-03", Period{2024, 3}, true},
		{"2024.03", Period{2024, 3}, true},
		{"2024/3", Period{2024, 3}, true},
		{"202403", Period{2024, 3}, true},
		{"2024-12", Period{2024, 12}, true},
		{"2024", Period{2024, 0}, true},
		{" 2023-01 ", Period{2023, 1}, true},
		{"2024-13", Period{}, false},
		{"2024-00", Period{}, false},
		{"총계", Period{}, false},
		{"합계", Period{}, false},
		{"", Period{}, false},
		{"24-03", Period{}, false},
		{"abcd", Period{}, false},
	}
	for _, tc := range cases {
		got, ok := ParsePeriod(tc.in)
		if ok != tc.ok {
			t.Fatalf("ParsePeriod(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ParsePeriod(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestPeriodOrdering(t *testing.T) {
	earlier := NewYearMonth(2023, 12)
	later := NewYearMonth(2024, 1)
	if !earlier.Before(later) {
		t.Fatalf("2023.12 should sort before 2024.01")
	}
	if ComparePeriods(later, earlier) != 1 {
		t.Fatalf("ComparePeriods(2024.01, 2023.12) should be 1")
	}
	if ComparePeriods(earlier, earlier) != 0 {
		t.Fatalf("equal periods should compare to 0")
	}
	// A plain year sorts before any of its months.
	if !NewYear(2024).Before(NewYearMonth(2024, 1)) {
		t.Fatalf("year 2024 should sort before 2024.01")
	}
}

func TestPeriodString(t *testing.T) {
	if got := NewYearMonth(2024, 3).String(); got != "2024.03" {
		t.Fatalf("String() = %q, want 2024.03", got)
	}
	if got := NewYear(2023).String(); got != "2023" {
		t.Fatalf("String() = %q, want 2023", got)
	}
}
