package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/pdcheck/internal/app"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdcheck",
		Short: "Public domain status checker for published books",
		Long: `pdcheck estimates whether a book is in the public domain in the United States.

It searches the Catalog of Copyright Entries registration records for the
closest match to an author and title, then checks the renewal records when the
registration fell in the years where renewal was required.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	app.AddFlags(cmd)

	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newBatchCmd())
	cmd.AddCommand(newDebugCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}
