// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nessie/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent archive runs from the journal",
	Long: `History reads the SQLite journal written by runs made with --journal
(or NESSIE_JOURNAL) and lists the most recent runs with the number of
commands each issued and how many of them failed.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 10, "number of runs to show")
	historyCmd.Flags().Bool("json", false, "output runs as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := runOptions().JournalPath
	if path == "" {
		return fmt.Errorf("no journal configured: pass --journal or set NESSIE_JOURNAL")
	}

	j, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer j.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := j.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatHistory(cmd.OutOrStdout(), runs, jsonOutput)
}

func formatHistory(w io.Writer, runs []journal.RunSummary, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-5s  %-19s  %-8s  %-8s  %-6s  %s\n", "Run", "Started", "Mode", "Commands", "Failed", "Config")
	for _, r := range runs {
		mode := "run"
		if r.DryRun {
			mode = "dry-run"
		}
		fmt.Fprintf(w, "%-5d  %-19s  %-8s  %-8d  %-6d  %s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), mode, r.Commands, r.Failed, r.ConfigPath)
	}
	return nil
}
