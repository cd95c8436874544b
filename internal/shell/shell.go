// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package shell is the boundary to external programs. It checks that required
// binaries are installed and runs commands, printing each command line before
// it runs. In dry-run mode commands are printed and never executed.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/kballard/go-shellquote"
)

// Executor abstracts process execution so tests can substitute a fake.
type Executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error
}

// OSExecutor is the production Executor backed by os/exec.
type OSExecutor struct{}

func (OSExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (OSExecutor) Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// MissingDependencyError reports a required binary that is not on PATH.
type MissingDependencyError struct {
	Name string
	Err  error
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%s is not installed", e.Name)
}

func (e *MissingDependencyError) Unwrap() error { return e.Err }

// CheckDependencies verifies that every named binary resolves on PATH. It
// returns a *MissingDependencyError for the first one that does not.
func CheckDependencies(e Executor, names ...string) error {
	for _, name := range names {
		if _, err := e.LookPath(name); err != nil {
			return &MissingDependencyError{Name: name, Err: err}
		}
	}
	return nil
}

// Result describes one command issued through a Runner.
type Result struct {
	Section  string
	Argv     []string
	DryRun   bool
	ExitCode int
	Duration time.Duration
	Err      error
}

// OK reports whether the command ran (or was simulated) successfully.
func (r Result) OK() bool {
	return r.Err == nil
}

// String returns the shell-quoted command line.
func (r Result) String() string {
	return shellquote.Join(r.Argv...)
}

// Recorder receives every Result a Runner produces.
type Recorder interface {
	Record(ctx context.Context, res Result) error
}

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// DryRun prints commands without executing them.
	DryRun bool

	// Progress receives the "[RUN]"/"[DRYRUN]" command lines. Defaults to io.Discard.
	Progress io.Writer

	// Output receives stdout and stderr of executed commands. Defaults to Progress.
	Output io.Writer

	// Recorder, when set, is notified of every command.
	Recorder Recorder
}

// Runner issues external commands one at a time.
type Runner struct {
	exec     Executor
	dryRun   bool
	progress io.Writer
	output   io.Writer
	recorder Recorder
}

// NewRunner returns a Runner that executes through e.
func NewRunner(e Executor, cfg RunnerConfig) *Runner {
	progress := cfg.Progress
	if progress == nil {
		progress = io.Discard
	}
	output := cfg.Output
	if output == nil {
		output = progress
	}
	return &Runner{
		exec:     e,
		dryRun:   cfg.DryRun,
		progress: progress,
		output:   output,
		recorder: cfg.Recorder,
	}
}

// DryRun reports whether the runner only prints commands.
func (r *Runner) DryRun() bool { return r.dryRun }

// Run prints and, unless in dry-run mode, executes name with args. The
// command's exit status is reported in the Result; it is never turned into
// an error for the caller to handle.
func (r *Runner) Run(ctx context.Context, section, name string, args ...string) Result {
	res := Result{
		Section: section,
		Argv:    append([]string{name}, args...),
		DryRun:  r.dryRun,
	}

	prefix := "[RUN] "
	if r.dryRun {
		prefix = "[DRYRUN] "
	}
	fmt.Fprintf(r.progress, "%s%s\n", prefix, res.String())

	if !r.dryRun {
		start := time.Now()
		res.Err = r.exec.Run(ctx, name, args, r.output, r.output)
		res.Duration = time.Since(start)
		res.ExitCode = exitCode(res.Err)
	}

	if r.recorder != nil {
		if err := r.recorder.Record(ctx, res); err != nil {
			fmt.Fprintf(r.progress, "warning: could not record command: %v\n", err)
		}
	}
	return res
}

// exitCode maps a Run error to a process exit status. Errors that did not
// come from a finished process (binary not found, context canceled) map to -1.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
