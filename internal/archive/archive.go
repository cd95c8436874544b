// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive runs the per-section pipeline: optional MP3 conversion of
// top-level recordings, then an rsync mirror to the remote destination.
// Sections are processed one at a time in configuration order.
package archive

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/nessie/internal/encode"
	"github.com/pdiddy/nessie/internal/mirror"
	"github.com/pdiddy/nessie/internal/shell"
	"github.com/pdiddy/nessie/pkg/types"
)

// Dependencies lists the external binaries a run needs.
var Dependencies = []string{encode.Binary, mirror.Binary}

// Summary holds the outcome of a run.
type Summary struct {
	Visited   int
	Skipped   int
	Converted int
	Failed    int
}

// Pipeline processes sections through a shell.Runner.
type Pipeline struct {
	Runner *shell.Runner
	Mirror mirror.Options
}

// Run processes every section in order, writing progress to w. Failures of
// external commands are reported and counted; they never stop the run.
func (p *Pipeline) Run(ctx context.Context, sections []types.Section, w io.Writer) Summary {
	var sum Summary
	if p.Runner.DryRun() {
		fmt.Fprintln(w, "Dry run: commands are printed, not executed.")
	}
	for _, s := range sections {
		if s.Skip {
			fmt.Fprintf(w, "Skipping section %s\n", s.Name)
			sum.Skipped++
			continue
		}
		sum.Visited++
		p.runSection(ctx, s, w, &sum)
	}

	if sum.Converted > 0 {
		fmt.Fprintf(w, "%d files were converted to MP3. Please review and clean up the original recordings.\n", sum.Converted)
	}
	if sum.Failed > 0 {
		fmt.Fprintf(w, "%d command(s) failed; see output above.\n", sum.Failed)
	}
	fmt.Fprintln(w, "Archive process completed.")
	return sum
}

func (p *Pipeline) runSection(ctx context.Context, s types.Section, w io.Writer, sum *Summary) {
	fmt.Fprintf(w, "Processing section: %s\n", s.Name)

	long, err := mirror.LongPaths(s.Local, s.Remote, mirror.MaxPathBytes)
	switch {
	case err != nil:
		fmt.Fprintf(w, "warning: %v\n", err)
	case len(long) > 0:
		fmt.Fprintf(w, "warning: %d file(s) exceed %d bytes on the remote system:\n", len(long), mirror.MaxPathBytes)
		for _, l := range long {
			fmt.Fprintf(w, "  %s\n", l)
		}
	}

	if s.ConvertToMP3 {
		res, err := encode.ConvertDir(ctx, p.Runner, s.Name, s.Local, w)
		if err != nil {
			fmt.Fprintf(w, "warning: conversion skipped for %s: %v\n", s.Name, err)
		}
		if res.HasFailures() {
			fmt.Fprintf(w, "warning: %d of %d file(s) in %s failed to convert\n", res.Failed, res.Total(), s.Name)
		}
		sum.Converted += res.Converted
		sum.Failed += res.Failed
	}

	if res := mirror.Sync(ctx, p.Runner, s, p.Mirror, w); !res.OK() {
		sum.Failed++
	}

	fmt.Fprintf(w, "Section %s completed.\n", s.Name)
}
