// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/nessie/internal/shell"
	"github.com/pdiddy/nessie/pkg/types"
)

// fakeExecutor records every command and fails any whose binary is in fail.
type fakeExecutor struct {
	calls [][]string
	fail  map[string]bool
}

func (f *fakeExecutor) LookPath(file string) (string, error) { return "/usr/bin/" + file, nil }

func (f *fakeExecutor) Run(_ context.Context, name string, args []string, _, _ io.Writer) error {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.fail[name] {
		return errors.New("exit status 1")
	}
	return nil
}

func (f *fakeExecutor) binaries() []string {
	var out []string
	for _, c := range f.calls {
		out = append(out, c[0])
	}
	return out
}

func sectionDir(t *testing.T, wavs ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, w := range wavs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, w), []byte("RIFF"), 0o644))
	}
	return dir
}

func newPipeline(exec shell.Executor, dryRun bool, w io.Writer) *Pipeline {
	return &Pipeline{Runner: shell.NewRunner(exec, shell.RunnerConfig{DryRun: dryRun, Progress: w})}
}

func TestRunVisitsEverySection(t *testing.T) {
	sections := []types.Section{
		{Name: "lessons", Local: sectionDir(t, "a.wav"), Remote: "/backup/lessons", ConvertToMP3: true},
		{Name: "concerts", Local: sectionDir(t, "b.wav"), Remote: "/backup/concerts"},
	}
	exec := &fakeExecutor{}
	var log bytes.Buffer

	sum := newPipeline(exec, false, &log).Run(context.Background(), sections, &log)

	assert.Equal(t, Summary{Visited: 2, Converted: 1}, sum)
	assert.Equal(t, []string{"ffmpeg", "rsync", "rsync"}, exec.binaries())

	out := log.String()
	assert.NotContains(t, out, "Dry run:")
	assert.NotContains(t, out, "failed to convert")
	assert.Contains(t, out, "Section lessons completed.")
	assert.Contains(t, out, "Section concerts completed.")
	assert.Less(t, strings.Index(out, "Section lessons completed."), strings.Index(out, "Section concerts completed."))
	assert.Contains(t, out, "1 files were converted to MP3.")
	assert.True(t, strings.HasSuffix(out, "Archive process completed.\n"))
}

func TestRunDryRunExecutesNothing(t *testing.T) {
	sections := []types.Section{
		{Name: "lessons", Local: sectionDir(t, "a.wav", "b.wav"), Remote: "/backup/lessons", ConvertToMP3: true},
	}
	exec := &fakeExecutor{}
	var log bytes.Buffer

	sum := newPipeline(exec, true, &log).Run(context.Background(), sections, &log)

	assert.Empty(t, exec.calls)
	assert.Equal(t, 0, sum.Converted)
	out := log.String()
	assert.Equal(t, 2, strings.Count(out, "[DRYRUN] ffmpeg"))
	assert.Equal(t, 1, strings.Count(out, "[DRYRUN] rsync"))
	assert.NotContains(t, out, "[RUN]")
	assert.True(t, strings.HasPrefix(out, "Dry run: commands are printed, not executed.\n"))
	assert.Contains(t, out, "Section lessons completed.")
}

func TestRunWithoutConversionIssuesNoEncoderCommand(t *testing.T) {
	sections := []types.Section{
		{Name: "photos", Local: sectionDir(t, "a.wav"), Remote: "/backup/photos", ConvertToMP3: false},
	}
	exec := &fakeExecutor{}
	var log bytes.Buffer

	newPipeline(exec, false, &log).Run(context.Background(), sections, &log)

	assert.Equal(t, []string{"rsync"}, exec.binaries())
	assert.NotContains(t, log.String(), "ffmpeg")
}

func TestRunSkipsSections(t *testing.T) {
	sections := []types.Section{
		{Name: "old", Local: sectionDir(t), Remote: "/backup/old", Skip: true},
		{Name: "new", Local: sectionDir(t), Remote: "/backup/new"},
	}
	exec := &fakeExecutor{}
	var log bytes.Buffer

	sum := newPipeline(exec, false, &log).Run(context.Background(), sections, &log)

	assert.Equal(t, Summary{Visited: 1, Skipped: 1}, sum)
	require.Len(t, exec.calls, 1)
	assert.Equal(t, sections[1].Local, exec.calls[0][len(exec.calls[0])-2])
	assert.Contains(t, log.String(), "Skipping section old")
	assert.NotContains(t, log.String(), "Section old completed.")
}

func TestRunContinuesAfterFailures(t *testing.T) {
	sections := []types.Section{
		{Name: "a", Local: sectionDir(t, "x.wav"), Remote: "/backup/a", ConvertToMP3: true},
		{Name: "b", Local: sectionDir(t), Remote: "/backup/b"},
	}
	exec := &fakeExecutor{fail: map[string]bool{"ffmpeg": true, "rsync": true}}
	var log bytes.Buffer

	sum := newPipeline(exec, false, &log).Run(context.Background(), sections, &log)

	assert.Equal(t, 2, sum.Visited)
	assert.Equal(t, 3, sum.Failed)
	assert.Equal(t, []string{"ffmpeg", "rsync", "rsync"}, exec.binaries())
	assert.Contains(t, log.String(), "warning: 1 of 1 file(s) in a failed to convert")
	assert.Contains(t, log.String(), "Section b completed.")
	assert.Contains(t, log.String(), "3 command(s) failed")
}

func TestRunMissingLocalDirStillSyncs(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "unplugged")
	sections := []types.Section{
		{Name: "drive", Local: missing, Remote: "/backup/drive", ConvertToMP3: true},
	}
	exec := &fakeExecutor{}
	var log bytes.Buffer

	newPipeline(exec, false, &log).Run(context.Background(), sections, &log)

	assert.Equal(t, []string{"rsync"}, exec.binaries())
	assert.Contains(t, log.String(), "warning: conversion skipped for drive")
}

func TestDependencies(t *testing.T) {
	assert.Equal(t, []string{"ffmpeg", "rsync"}, Dependencies)
}
