// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nessie/internal/archive"
	"github.com/pdiddy/nessie/internal/config"
	"github.com/pdiddy/nessie/internal/journal"
	"github.com/pdiddy/nessie/internal/mirror"
	"github.com/pdiddy/nessie/internal/shell"
	"github.com/pdiddy/nessie/pkg/types"
)

func runRoot(cmd *cobra.Command, args []string) error {
	return runArchive(cmd.Context(), shell.OSExecutor{}, runOptions(), cmd.OutOrStdout())
}

// runArchive checks dependencies, loads the sections and runs the pipeline.
// Nothing on disk is touched until both binaries are found.
func runArchive(ctx context.Context, e shell.Executor, opts types.RunOptions, w io.Writer) error {
	if err := checkDependencies(e, w); err != nil {
		return err
	}

	sections, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	output := w
	if opts.LogFile != "" {
		f, err := openLog(opts.LogFile, time.Now())
		if err != nil {
			return err
		}
		defer f.Close()
		output = f
	}

	var rec shell.Recorder
	if opts.JournalPath != "" {
		j, err := journal.Open(opts.JournalPath)
		if err != nil {
			return err
		}
		defer j.Close()
		if err := j.BeginRun(ctx, opts.ConfigPath, opts.DryRun); err != nil {
			return err
		}
		defer func() {
			if err := j.FinishRun(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
		}()
		rec = j
	}

	p := &archive.Pipeline{
		Runner: shell.NewRunner(e, shell.RunnerConfig{
			DryRun:   opts.DryRun,
			Progress: w,
			Output:   output,
			Recorder: rec,
		}),
		Mirror: mirror.Options{SSHIdentity: opts.SSHIdentity},
	}
	p.Run(ctx, sections, w)
	return nil
}

func checkDependencies(e shell.Executor, w io.Writer) error {
	fmt.Fprintln(w, "Checking for required dependencies...")
	if err := shell.CheckDependencies(e, archive.Dependencies...); err != nil {
		return err
	}
	fmt.Fprintln(w, "All dependencies are installed.")
	return nil
}

// openLog opens path for appending and writes a timestamp banner for this run.
func openLog(path string, now time.Time) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	if _, err := fmt.Fprintf(f, "==== %s ====\n", now.Format("2006-01-02 15:04:05")); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing log file %s: %w", path, err)
	}
	return f, nil
}
