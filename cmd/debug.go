package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/pdcheck/internal/debugcmd"
)

func newDebugCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Inspect matching, renewal lookup and search windows",
	}

	cmd.AddCommand(debugcmd.NewMatchCmd())
	cmd.AddCommand(debugcmd.NewRenewalCmd())
	cmd.AddCommand(debugcmd.NewWindowCmd())

	return cmd
}
