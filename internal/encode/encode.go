// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package encode converts lesson recordings to MP3 by delegating to ffmpeg.
// Only the top level of a section's local directory is scanned.
package encode

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/nessie/internal/shell"
)

const (
	// Binary is the encoder executable.
	Binary = "ffmpeg"

	codec      = "libmp3lame"
	bitrate    = "320k"
	sampleRate = "44100"
	sourceExt  = ".wav"
	targetExt  = ".mp3"
)

// Result holds the outcome of converting one directory.
type Result struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the number of source files seen.
func (r Result) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any encoder invocation failed.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// Command returns the ffmpeg argument list (without the binary) that encodes
// src into dst. -n makes ffmpeg refuse to overwrite dst.
func Command(src, dst string) []string {
	return []string{
		"-n",
		"-i", src,
		"-acodec", codec,
		"-ab", bitrate,
		"-ar", sampleRate,
		dst,
	}
}

// OutputPath returns the MP3 path written next to src.
func OutputPath(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + targetExt
}

// Sources lists the WAV files directly inside dir, sorted by name. The
// extension match is case-insensitive.
func Sources(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), sourceExt) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// ConvertDir encodes every WAV file at the top of dir. Files whose MP3
// already exists are skipped. In dry-run mode commands are only printed and
// nothing counts as converted. Progress lines go to w.
func ConvertDir(ctx context.Context, r *shell.Runner, section, dir string, w io.Writer) (Result, error) {
	fmt.Fprintln(w, "Starting conversion of audio recordings...")

	sources, err := Sources(dir)
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, src := range sources {
		dst := OutputPath(src)
		if _, err := os.Stat(dst); err == nil {
			fmt.Fprintf(w, "skipped: %s (%s exists)\n", filepath.Base(src), filepath.Base(dst))
			result.Skipped++
			continue
		}

		res := r.Run(ctx, section, Binary, Command(src, dst)...)
		switch {
		case !res.OK():
			fmt.Fprintf(w, "warning: %s failed for %s: %v\n", Binary, src, res.Err)
			result.Failed++
		case res.DryRun:
		default:
			fmt.Fprintf(w, "Converted: %s\n", src)
			result.Converted++
		}
	}

	if result.Converted > 0 {
		fmt.Fprintf(w, "Conversion process completed. %d files converted.\n", result.Converted)
	}
	return result, nil
}
