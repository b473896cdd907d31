// Package batchcmd implements the batch subcommands.
package batchcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/pdcheck/internal/app"
	"github.com/lehigh-university-libraries/pdcheck/internal/results"
)

// NewRunCmd creates the batch run command
func NewRunCmd() *cobra.Command {
	var opts RunOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Determine the status of every book in a list",
		Long: `Determine the public domain status of every book in a CSV, JSONL or Parquet list.

Lists need author and title columns; year, id and expected_status are optional.
When expected_status is present the summary reports how often pdcheck agrees.

With --ledger, finished rows are checkpointed to SQLite so an interrupted run
picks up where it stopped.`,
		Example: `  # Check a CSV list with 8 workers
  pdcheck batch run --input books.csv --concurrency 8

  # Resumable run with JSON output
  pdcheck batch run --input books.parquet --ledger batch.db --output results/books.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.Input); err != nil {
				return fmt.Errorf("book list not found: %s", opts.Input)
			}

			a, err := app.Load(cmd)
			if err != nil {
				return err
			}

			opts.Concurrency = a.Config.Concurrency
			opts.Config = results.RunConfig{
				RegistrationDir: a.Config.RegistrationDir,
				RenewalDir:      a.Config.RenewalDir,
				AllowFullScan:   a.Config.AllowFullScan,
			}
			opts.Stdout = cmd.OutOrStdout()
			opts.Stderr = cmd.ErrOrStderr()

			_, err = executeRun(cmd.Context(), a.Engine, opts)
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Book list (.csv, .jsonl or .parquet)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Results file (.yaml, .json or .csv); defaults to results/batch-<timestamp>.yaml")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Only check the first N books (0 for all)")
	cmd.Flags().StringVar(&opts.LedgerPath, "ledger", "", "SQLite checkpoint file for resumable runs")
	cmd.Flags().BoolVar(&opts.Restart, "restart", false, "Forget ledger progress for this input and start over")
	cmd.Flags().Int("concurrency", 4, "Books checked in parallel (env PDCHECK_CONCURRENCY)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// NewReportCmd creates the batch report command
func NewReportCmd() *cobra.Command {
	var resultsPath string
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render saved batch results",
		Example: `  pdcheck batch report --results results/batch-2026-01-02_03-04-05.yaml
  pdcheck batch report --results results/books.json --format csv > books.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(cmd.OutOrStdout(), resultsPath, format)
		},
	}

	cmd.Flags().StringVarP(&resultsPath, "results", "r", "", "Saved results (.yaml or .json)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json, csv or yaml")
	_ = cmd.MarkFlagRequired("results")

	return cmd
}
