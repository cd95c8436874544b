// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the nessie CLI. Running nessie with no
// subcommand archives every section of the config file: recordings are
// optionally converted to MP3 with ffmpeg, then each directory is mirrored to
// its remote destination with rsync.
package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/nessie/internal/config"
	"github.com/pdiddy/nessie/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the nessie CLI.
var rootCmd = &cobra.Command{
	Use:   "nessie",
	Short: "Convert lesson recordings and archive directories to a NAS",
	Long: `nessie archives local directories to a backup destination. For each
section of the config file it optionally converts top-level WAV recordings to
MP3 with ffmpeg, then mirrors the directory with rsync.

Use --dry-run to print the ffmpeg and rsync commands without running them.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runRoot,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", config.DefaultPath, "sections file (YAML or JSON)")
	rootCmd.PersistentFlags().String("journal", "", "SQLite database recording runs (disabled when empty)")

	rootCmd.Flags().Bool("dry-run", false, "only print the commands that would be executed")
	rootCmd.Flags().String("log-file", "", "append ffmpeg and rsync output to this file instead of the terminal")
	rootCmd.Flags().String("ssh-identity", "", "private key for rsync's ssh transport")

	bindFlags()
}

// bindFlags ties viper keys to the root command's flags.
func bindFlags() {
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("journal", rootCmd.PersistentFlags().Lookup("journal"))
	_ = viper.BindPFlag("dry_run", rootCmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("log_file", rootCmd.Flags().Lookup("log-file"))
	_ = viper.BindPFlag("ssh_identity", rootCmd.Flags().Lookup("ssh-identity"))
}

func initConfig() {
	viper.SetEnvPrefix("NESSIE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// runOptions reads the run settings from flags and NESSIE_* environment
// variables. Flags win over the environment.
func runOptions() types.RunOptions {
	return types.RunOptions{
		DryRun:      viper.GetBool("dry_run"),
		ConfigPath:  viper.GetString("config"),
		LogFile:     viper.GetString("log_file"),
		JournalPath: viper.GetString("journal"),
		SSHIdentity: viper.GetString("ssh_identity"),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
