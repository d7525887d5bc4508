// Package engine turns a flat list of transactions into chart-ready
// projections. It runs in three pure stages: Filter, Reduce and projection.
package engine

import (
	"time"

	"finviz/internal/core"
)

// Result is the output of one aggregation run.
type Result struct {
	Filter   core.FilterState `json:"filter"`
	Snapshot Snapshot         `json:"snapshot"`
	Charts   Charts           `json:"charts"`
}

// Aggregate normalizes state against records and runs the full pipeline.
// Colours are assigned from the unfiltered category order so a category
// keeps its colour across filter changes.
func Aggregate(records []core.Record, state core.FilterState, now time.Time) Result {
	state = Normalize(records, state)
	snap := Reduce(Filter(records, state, now))
	return Result{
		Filter:   state,
		Snapshot: snap,
		Charts:   ProjectWithPalette(snap, NewPalette(Categories(records))),
	}
}
