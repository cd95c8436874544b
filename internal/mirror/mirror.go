// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mirror copies a section's directory tree to its remote destination
// by delegating to rsync.
package mirror

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"

	"github.com/pdiddy/nessie/internal/shell"
	"github.com/pdiddy/nessie/pkg/types"
)

const (
	// Binary is the sync executable.
	Binary = "rsync"

	// MaxPathBytes is the longest destination path most NAS filesystems accept.
	MaxPathBytes = 255
)

// Excludes are never copied: Finder metadata, a stray DS_Store some
// recovery tools create, and REAPER peak files that are rebuilt on load.
var Excludes = []string{".DS_Store", "DS_Store", "*.pkf", "*.reapeaks"}

// Options carries run-wide rsync settings that are not part of a section.
type Options struct {
	// SSHIdentity selects the private key for the ssh transport.
	SSHIdentity string
}

// Command returns the rsync argument list (without the binary) that mirrors
// s.Local to s.Remote. Both paths are passed through unchanged.
func Command(s types.Section, opts Options) []string {
	args := []string{
		"--archive",
		"--verbose",
		"--human-readable",
		"--checksum",
		"--progress",
		"--partial",
	}
	for _, e := range Excludes {
		args = append(args, "--exclude="+e)
	}
	if s.RemoteRsyncPath != "" {
		args = append(args, "--rsync-path="+s.RemoteRsyncPath)
	}
	if opts.SSHIdentity != "" {
		args = append(args, "-e", fmt.Sprintf("ssh -i %s -o ServerAliveInterval=10", opts.SSHIdentity))
	}
	return append(args, s.Local, s.Remote)
}

// Sync mirrors one section. The rsync exit status is reported on w but does
// not stop the caller.
func Sync(ctx context.Context, r *shell.Runner, s types.Section, opts Options, w io.Writer) shell.Result {
	fmt.Fprintf(w, "Starting rsync for: %s\n", s.Local)
	res := r.Run(ctx, s.Name, Binary, Command(s, opts)...)
	if !res.OK() {
		fmt.Fprintf(w, "warning: %s exited with status %d for %s: %v\n", Binary, res.ExitCode, s.Local, res.Err)
	}
	fmt.Fprintf(w, "Rsync completed for: %s\n", s.Local)
	return res
}

// LongPaths walks local and returns the files whose path under remote would
// exceed limit bytes. The remote side is joined with forward slashes since it
// may be a host:path destination.
func LongPaths(local, remote string, limit int) ([]string, error) {
	var long []string
	root := filepath.Clean(local)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if len(path.Join(remote, filepath.ToSlash(rel))) > limit {
			long = append(long, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", local, err)
	}
	return long, nil
}
