package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"finviz/internal/core"
	"finviz/internal/engine"
	"finviz/internal/ingest"
)

type aggregateOptions struct {
	file     string
	timeRng  string
	category string
	chart    string
	asOf     string
	pretty   bool
}

func newAggregateCmd() *cobra.Command {
	opts := aggregateOptions{}
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate a transaction file and print the result as JSON",
		Long: `Aggregate decodes a CSV or XLSX file, applies the time range and
category filter, and prints the filter, snapshot and charts to stdout.
Use --chart to print a single projection.`,
		Example: "  finviz aggregate --file transactions.csv --range month --category Food",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAggregate(cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "CSV or XLSX file to aggregate (required)")
	f.StringVarP(&opts.timeRng, "range", "r", string(core.RangeAll), "time range: all, week, month, quarter, year")
	f.StringVarP(&opts.category, "category", "c", core.AllCategories, "category to keep, or all")
	f.StringVar(&opts.chart, "chart", "", "print only this chart: bar, pie, line, bubble, radar")
	f.StringVar(&opts.asOf, "as-of", "", "evaluate the time range as of this date (YYYY-MM-DD) instead of now")
	f.BoolVar(&opts.pretty, "pretty", true, "indent the JSON output")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runAggregate(out io.Writer, opts aggregateOptions) error {
	now := time.Now()
	if opts.asOf != "" {
		d, err := time.ParseInLocation(core.DateLayout, opts.asOf, time.UTC)
		if err != nil {
			return fmt.Errorf("invalid --as-of %q: %w", opts.asOf, err)
		}
		now = d
	}

	var kind engine.ChartKind
	if opts.chart != "" {
		k, ok := engine.ParseChartKind(opts.chart)
		if !ok {
			return fmt.Errorf("unknown chart %q: expected bar, pie, line, bubble or radar", opts.chart)
		}
		kind = k
	}

	fh, err := os.Open(opts.file)
	if err != nil {
		return err
	}
	defer fh.Close()

	records, err := ingest.ParseFile(opts.file, fh)
	if err != nil {
		return err
	}

	state := core.FilterState{TimeRange: core.ParseTimeRange(opts.timeRng), Category: opts.category}
	if state.Category == "" {
		state.Category = core.AllCategories
	}
	res := engine.Aggregate(records, state, now)

	var payload any = res
	if kind != "" {
		chart, _ := res.Charts.Get(kind)
		payload = chart
	}

	enc := json.NewEncoder(out)
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(payload)
}
