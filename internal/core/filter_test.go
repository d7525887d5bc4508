package core

import (
	"testing"
	"time"
)

func TestParseTimeRange(t *testing.T) {
	cases := map[string]TimeRange{
		"all":      RangeAll,
		"week":     RangeWeek,
		"Month":    RangeMonth,
		"quarter":  RangeQuarter,
		" year ":   RangeYear,
		"":         RangeAll,
		"fortnite": RangeAll,
	}
	for in, want := range cases {
		if got := ParseTimeRange(in); got != want {
			t.Fatalf("%q: expected %s, got %s", in, want, got)
		}
	}
}

func TestTimeRangeCutoff(t *testing.T) {
	now := time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		r    TimeRange
		want time.Time
	}{
		{RangeWeek, time.Date(2023, 2, 22, 12, 0, 0, 0, time.UTC)},
		{RangeMonth, time.Date(2023, 1, 30, 12, 0, 0, 0, time.UTC)},
		{RangeQuarter, time.Date(2022, 12, 1, 12, 0, 0, 0, time.UTC)},
		{RangeYear, time.Date(2022, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, ok := tc.r.Cutoff(now)
		if !ok || !got.Equal(tc.want) {
			t.Fatalf("%s: expected %v, got %v (ok=%v)", tc.r, tc.want, got, ok)
		}
	}
	if _, ok := RangeAll.Cutoff(now); ok {
		t.Fatalf("all must be unbounded")
	}
}

func TestFilterStateAllCategories(t *testing.T) {
	if !DefaultFilter().AllCategories() {
		t.Fatalf("default filter must select all categories")
	}
	if (FilterState{Category: "Food"}).AllCategories() {
		t.Fatalf("specific category must not be all")
	}
	if !(FilterState{}).AllCategories() {
		t.Fatalf("empty category means all")
	}
}
