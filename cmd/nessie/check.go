package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/nessie/internal/shell"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that ffmpeg and rsync are installed",
	Long: `Check looks up ffmpeg and rsync on PATH and exits nonzero, naming the
missing tool, when either is absent. An archive run performs the same check
before touching any files.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkDependencies(shell.OSExecutor{}, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
