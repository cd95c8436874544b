// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/nessie/internal/config"
	"github.com/pdiddy/nessie/pkg/types"
)

// resetCLI restores flag defaults and viper bindings so each test starts
// from a freshly initialized command tree.
func resetCLI(t *testing.T) {
	t.Helper()
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	rootCmd.Flags().VisitAll(reset)

	viper.Reset()
	bindFlags()
	initConfig()

	t.Cleanup(func() {
		rootCmd.SetArgs([]string{})
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
}

func TestRunOptions(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want types.RunOptions
	}{
		{
			name: "defaults",
			want: types.RunOptions{ConfigPath: config.DefaultPath},
		},
		{
			name: "dry-run flag",
			args: []string{"--dry-run"},
			want: types.RunOptions{DryRun: true, ConfigPath: config.DefaultPath},
		},
		{
			name: "dry-run from environment",
			env:  map[string]string{"NESSIE_DRY_RUN": "true"},
			want: types.RunOptions{DryRun: true, ConfigPath: config.DefaultPath},
		},
		{
			name: "flag wins over environment",
			args: []string{"--dry-run"},
			env:  map[string]string{"NESSIE_DRY_RUN": "false"},
			want: types.RunOptions{DryRun: true, ConfigPath: config.DefaultPath},
		},
		{
			name: "all flags",
			args: []string{
				"--config", "lessons.yml",
				"--journal", "runs.db",
				"--log-file", "nessie.log",
				"--ssh-identity", "/home/me/.ssh/id_ed25519",
			},
			want: types.RunOptions{
				ConfigPath:  "lessons.yml",
				JournalPath: "runs.db",
				LogFile:     "nessie.log",
				SSHIdentity: "/home/me/.ssh/id_ed25519",
			},
		},
		{
			name: "paths from environment",
			env: map[string]string{
				"NESSIE_CONFIG":   "/etc/nessie/config.yml",
				"NESSIE_LOG_FILE": "/var/log/nessie.log",
				"NESSIE_JOURNAL":  "/var/lib/nessie.db",
			},
			want: types.RunOptions{
				ConfigPath:  "/etc/nessie/config.yml",
				LogFile:     "/var/log/nessie.log",
				JournalPath: "/var/lib/nessie.db",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			resetCLI(t)

			require.NoError(t, rootCmd.ParseFlags(tt.args))
			assert.Equal(t, tt.want, runOptions())
		})
	}
}

// fakeTools puts shell-script stand-ins for ffmpeg and rsync on PATH. Each
// invocation appends its name to the returned marker file.
func fakeTools(t *testing.T) (marker string) {
	t.Helper()
	bin := t.TempDir()
	marker = filepath.Join(t.TempDir(), "invocations")
	for _, name := range []string{"ffmpeg", "rsync"} {
		script := "#!/bin/sh\necho " + name + " >> '" + marker + "'\n"
		require.NoError(t, os.WriteFile(filepath.Join(bin, name), []byte(script), 0o755))
	}
	t.Setenv("PATH", bin)
	return marker
}

func TestExecuteDryRun(t *testing.T) {
	marker := fakeTools(t)
	_, cfgPath := writeConfig(t)
	resetCLI(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--dry-run", "--config", cfgPath})

	require.NoError(t, rootCmd.Execute())

	assert.NoFileExists(t, marker, "dry run must not execute ffmpeg or rsync")
	assert.Contains(t, out.String(), "[DRYRUN] ffmpeg")
	assert.Equal(t, 2, strings.Count(out.String(), "[DRYRUN] rsync"))
	assert.Contains(t, out.String(), "Section concerts completed.")
}

func TestExecuteRunsTools(t *testing.T) {
	marker := fakeTools(t)
	_, cfgPath := writeConfig(t)
	resetCLI(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", cfgPath})

	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "ffmpeg\nrsync\nrsync\n", string(data))
}

func TestExecuteMissingDependencyFails(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	_, cfgPath := writeConfig(t)
	resetCLI(t)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"--config", cfgPath})

	err := rootCmd.Execute()

	require.EqualError(t, err, "ffmpeg is not installed")
	assert.Contains(t, errOut.String(), "Error: ffmpeg is not installed")
	assert.NotContains(t, errOut.String(), "Usage:")
	assert.NotContains(t, out.String(), "[RUN]")
}

func TestExecuteHistoryWithoutJournal(t *testing.T) {
	resetCLI(t)

	var errOut bytes.Buffer
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"history"})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no journal configured")
}
