package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "finviz",
		Short: "Aggregate transaction files into chart-ready projections",
		Long: `finviz reads CSV or XLSX transaction files (Date, Category, Amount),
filters them by time range and category, and serves five chart projections
over a JSON API.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "optional config file (yaml, json, toml or env)")
	root.PersistentFlags().String("env-file", "", "optional .env file (default .env when present)")

	root.AddCommand(newServeCmd(), newAggregateCmd())
	return root
}
