package engine

import (
	"time"

	"finviz/internal/core"
)

// Filter returns the records that satisfy state at instant now, in input order.
//
// With a bounded time range a record is kept only if it is dated and its date
// is not before now minus the range length; undated records are dropped.
// A specific category keeps only exact matches.
func Filter(records []core.Record, state core.FilterState, now time.Time) []core.Record {
	cutoff, bounded := state.TimeRange.Cutoff(now)
	allCategories := state.AllCategories()

	out := make([]core.Record, 0, len(records))
	for _, r := range records {
		if bounded && (!r.HasDate() || r.Date.Before(cutoff)) {
			continue
		}
		if !allCategories && r.Category != state.Category {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Normalize replaces selections that cannot be honoured with "all": an
// unknown time range, or a category that no record carries.
func Normalize(records []core.Record, state core.FilterState) core.FilterState {
	out := core.FilterState{
		TimeRange: state.TimeRange,
		Category:  state.Category,
	}
	if !out.TimeRange.Valid() {
		out.TimeRange = core.RangeAll
	}
	if out.AllCategories() {
		out.Category = core.AllCategories
		return out
	}
	for _, r := range records {
		if r.Category == out.Category {
			return out
		}
	}
	out.Category = core.AllCategories
	return out
}

// Categories returns the distinct categories of records in first-occurrence order.
func Categories(records []core.Record) []string {
	seen := make(map[string]struct{}, 16)
	out := make([]string, 0, 16)
	for _, r := range records {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	return out
}
