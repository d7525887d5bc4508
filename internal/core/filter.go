package core

import (
	"strings"
	"time"
)

// TimeRange selects how far back from "now" records are kept.
type TimeRange string

const (
	RangeAll     TimeRange = "all"
	RangeWeek    TimeRange = "week"
	RangeMonth   TimeRange = "month"
	RangeQuarter TimeRange = "quarter"
	RangeYear    TimeRange = "year"
)

// AllCategories is the category selector that disables category filtering.
const AllCategories = "all"

var rangeDays = map[TimeRange]int{
	RangeWeek:    7,
	RangeMonth:   30,
	RangeQuarter: 90,
	RangeYear:    365,
}

// TimeRanges returns every supported range in display order.
func TimeRanges() []TimeRange {
	return []TimeRange{RangeAll, RangeWeek, RangeMonth, RangeQuarter, RangeYear}
}

// ParseTimeRange maps user input to a TimeRange. Unknown values fall back to RangeAll.
func ParseTimeRange(s string) TimeRange {
	r := TimeRange(strings.ToLower(strings.TrimSpace(s)))
	if r.Valid() {
		return r
	}
	return RangeAll
}

func (r TimeRange) Valid() bool {
	if r == RangeAll {
		return true
	}
	_, ok := rangeDays[r]
	return ok
}

// Days returns the window length, 0 for RangeAll or unknown ranges.
func (r TimeRange) Days() int {
	return rangeDays[r]
}

// Cutoff returns the earliest kept instant for now, and false when the range is unbounded.
func (r TimeRange) Cutoff(now time.Time) (time.Time, bool) {
	days := r.Days()
	if days == 0 {
		return time.Time{}, false
	}
	return now.AddDate(0, 0, -days), true
}

// FilterState is the user's current selection.
type FilterState struct {
	TimeRange TimeRange `json:"time_range"`
	Category  string    `json:"category"`
}

func DefaultFilter() FilterState {
	return FilterState{TimeRange: RangeAll, Category: AllCategories}
}

// AllCategories reports whether the category filter is disabled.
func (f FilterState) AllCategories() bool {
	return f.Category == "" || f.Category == AllCategories
}
