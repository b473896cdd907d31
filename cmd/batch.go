package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/pdcheck/internal/batchcmd"
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Check lists of books",
		Long: `Batch tools for determining the status of many books at once.

Book lists may be CSV, JSONL or Parquet. Results are saved as YAML, JSON or CSV
and can be rendered again later with the report subcommand.`,
	}

	cmd.AddCommand(batchcmd.NewRunCmd())
	cmd.AddCommand(batchcmd.NewReportCmd())

	return cmd
}
