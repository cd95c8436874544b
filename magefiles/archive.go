//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Check verifies that ffmpeg and rsync are on PATH.
func Check() error {
	mg.Deps(Build)
	return sh.RunV("bin/nessie", "check")
}

// DryRun prints the commands an archive run would issue for config.yml.
func DryRun() error {
	mg.Deps(Build)
	return sh.RunV("bin/nessie", "--dry-run")
}

// Archive converts and mirrors every section in config.yml.
func Archive() error {
	mg.Deps(Build)
	return sh.RunV("bin/nessie")
}
